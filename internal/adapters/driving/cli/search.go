package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Quick evidence lookup against the most reliable source",
	Long: `Performs a low-latency lookup against the single most reliable
always-on source. Useful for exploring a topic before committing to
a full aggregation run.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if aggregationService == nil {
		return errors.New("aggregation service not configured")
	}

	items := aggregationService.QuickSearch(cmd.Context(), args[0])

	if searchJSON {
		out, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	if len(items) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, it := range items {
		cmd.Printf("  [%d] %s (%d)\n", i+1, it.Title, it.Score)
		cmd.Printf("      %s\n", it.URL)
	}
	return nil
}
