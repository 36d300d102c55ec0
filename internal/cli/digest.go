package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	digestCmd.Flags().StringVar(&digestDate, "date", "", "Day to report, YYYY-MM-DD (default today)")
	rootCmd.AddCommand(digestCmd)
}

var digestDate string

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Print the daily activity digest",
	RunE:  runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if digestDate != "" {
		var err error
		day, err = time.ParseInLocation("2006-01-02", digestDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date, want YYYY-MM-DD: %w", err)
		}
	}

	d, err := openOffline()
	if err != nil {
		return err
	}
	defer d.DB.Close()

	digest, err := d.Engine.RunDailyDigest(day)
	if err != nil {
		return err
	}
	if !digest.HasActivity() {
		fmt.Printf("No activity on %s\n", digest.Date.Format("2006-01-02"))
		return nil
	}

	fmt.Printf("Digest for %s\n", digest.Date.Format("2006-01-02"))
	for _, e := range digest.Entries {
		fmt.Printf("  @%-20s trips=%-3d time=%-10s xp=%d\n",
			e.Username, e.TotalTrips, e.TotalTime.Round(time.Minute), e.Experience)
	}
	fmt.Printf("Total: trips=%d time=%s xp=%d\n",
		digest.TotalTrips, digest.TotalTime.Round(time.Minute), digest.TotalExperience)
	return nil
}
