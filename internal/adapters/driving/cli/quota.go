package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show metered search quota usage",
	RunE:  runQuotaShow,
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the metered search usage counter",
	Long: `Zeroes the persisted usage counter. Run this after purchasing new
search quota; the counter otherwise only ever grows.`,
	RunE: runQuotaReset,
}

func init() {
	quotaCmd.AddCommand(quotaResetCmd)
	rootCmd.AddCommand(quotaCmd)
}

func runQuotaShow(cmd *cobra.Command, _ []string) error {
	if serpClient == nil {
		return errors.New("metered search client not configured")
	}

	stats, err := serpClient.UsageStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("read quota: %w", err)
	}

	cmd.Printf("Used:      %d / %d (%.1f%%)\n", stats.Used, stats.Limit, stats.PercentUsed)
	cmd.Printf("Remaining: %d\n", stats.Remaining)
	if stats.Disabled {
		cmd.Println("Status:    DISABLED (quota exhausted)")
	} else {
		cmd.Println("Status:    active")
	}
	return nil
}

func runQuotaReset(cmd *cobra.Command, _ []string) error {
	if serpClient == nil {
		return errors.New("metered search client not configured")
	}

	if err := serpClient.ResetUsage(cmd.Context()); err != nil {
		return fmt.Errorf("reset quota: %w", err)
	}
	cmd.Println("Usage counter reset.")
	return nil
}
