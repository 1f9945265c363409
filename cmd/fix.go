package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duncanfisher/patchpilot/internal/config"
	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/pkg/models"
)

// fixCmd runs the pipeline once for a ticket given on the command line.
// It exists so an operator can retry a ticket (for example after a
// submission failure) without replaying the webhook.
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Run the fix pipeline for a single ticket",
	Long: `Run the full fix pipeline once for a ticket supplied via flags
instead of a webhook. The pipeline result is printed as JSON.

Example:
  patchpilot fix --key BUG-1 --summary "Null pointer in parser" \
    --description "TypeError: cannot read x"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := cmd.Flags().GetString("key")
		if err != nil {
			return err
		}
		summary, err := cmd.Flags().GetString("summary")
		if err != nil {
			return err
		}
		description, err := cmd.Flags().GetString("description")
		if err != nil {
			return err
		}
		priority, err := cmd.Flags().GetString("priority")
		if err != nil {
			return err
		}

		if key == "" || summary == "" || description == "" {
			return fmt.Errorf("--key, --summary, and --description are required")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		ticket := models.Ticket{
			Key:         key,
			Summary:     summary,
			Description: description,
			Priority:    priority,
		}

		logging.Info("processing ticket", "ticket", key)

		result, err := p.Process(cmd.Context(), ticket)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().StringP("key", "k", "", "Ticket key (e.g., 'BUG-1')")
	fixCmd.Flags().StringP("summary", "s", "", "Ticket summary")
	fixCmd.Flags().StringP("description", "d", "", "Ticket description")
	fixCmd.Flags().StringP("priority", "p", "", "Ticket priority name")
}
