package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rolloverCmd)
}

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Run the season rollover pass once",
	Long: `Retire expired seasons, award the podium, and activate or create
the next season. Idempotent: re-running on the same day is a no-op.`,
	RunE: runRollover,
}

func runRollover(cmd *cobra.Command, args []string) error {
	d, err := openOffline()
	if err != nil {
		return err
	}
	defer d.DB.Close()

	report, err := d.Engine.RunSeasonRollover()
	if err != nil {
		return err
	}

	for _, ended := range report.Ended {
		fmt.Printf("Ended season %q (%d winners)\n", ended.Season.Name, len(ended.Winners))
	}
	for _, s := range report.Started {
		fmt.Printf("Started season %q\n", s.Name)
	}
	if report.Created != nil {
		fmt.Printf("Created season %q until %s\n",
			report.Created.Name, report.Created.EndDate.Format("2006-01-02"))
	}
	if len(report.Ended) == 0 && len(report.Started) == 0 && report.Created == nil {
		fmt.Println("Nothing to do")
	}
	return nil
}
