package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/veridian-labs/oppscan-cli/internal/topics"
)

var topicsPack string

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List available topics",
	RunE:  runTopics,
}

func init() {
	topicsCmd.Flags().StringVar(&topicsPack, "pack", "", "path to a custom topic pack YAML")
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	pack, err := topics.Load(topicsPack)
	if err != nil {
		return err
	}

	for _, t := range pack.Topics {
		cmd.Printf("  %-25s %s\n", t.Name, strings.Join(t.Keywords, ", "))
	}
	return nil
}
