package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-source availability",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if aggregationService == nil {
		return errors.New("aggregation service not configured")
	}

	statuses := aggregationService.SourceStatus(cmd.Context())
	if len(statuses) == 0 {
		cmd.Println("No sources registered.")
		return nil
	}

	cmd.Printf("%-15s %-12s %-10s %s\n", "SOURCE", "CONFIGURED", "AVAILABLE", "RATE LIMIT")
	for _, s := range statuses {
		cmd.Printf("%-15s %-12t %-10t %s\n", s.Provider, s.Configured, s.Available, s.RateLimit)
	}
	return nil
}
