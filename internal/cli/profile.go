package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile <user-id>",
	Short: "Show a user's standing in the active season",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	d, err := openOffline()
	if err != nil {
		return err
	}
	defer d.DB.Close()

	profile, err := d.Engine.Profile(userID)
	if err != nil {
		return err
	}

	info := profile.LevelInfo
	fmt.Printf("@%s — season %q\n", profile.Username, profile.SeasonName)
	fmt.Printf("Level %d: %s (%s)\n", info.Level, info.Title, info.Category)
	fmt.Printf("Experience: %d XP (%.0f%% to next level, %d XP to go)\n",
		info.CurrentExp, info.Progress, info.ExpToNext)
	fmt.Printf("Visits: %d, time on trips: %s\n",
		profile.Visits, profile.TotalTime.Round(time.Minute))
	return nil
}
