package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cat-time-bot/cattime/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveBot, "bot", false, "Force-enable the Telegram bot")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost string
	servePort int
	serveBot  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cattime daemon",
	Long:  `Start the HTTP API, the Telegram bot (if enabled) and the daily jobs.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveBot {
		cfg.Bot.Enabled = true
	}

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	return d.Serve(context.Background())
}
