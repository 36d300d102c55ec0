package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cat-time-bot/cattime/internal/app/season"
	"github.com/cat-time-bot/cattime/internal/daemon"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in level ladder",
	Long:  `Load (or refresh) the level-title catalog. Safe to run repeatedly.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	d, err := openOffline()
	if err != nil {
		return err
	}
	defer d.DB.Close()

	n, err := season.SeedLevels(d.DB)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d level titles\n", n)
	return nil
}

// openOffline builds the daemon wiring without the Telegram bot, for
// one-shot commands.
func openOffline() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Bot.Enabled = false
	return daemon.NewWithConfig(cfg)
}
