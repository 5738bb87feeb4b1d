package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forgelabs/promptforge/export"
	"github.com/forgelabs/promptforge/metadata"
	"github.com/forgelabs/promptforge/session"
)

// loadSnapshot reads a metadata snapshot written by the extract command.
func loadSnapshot(path string) (*metadata.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc metadata.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &doc, nil
}

func newPlanCmd(a *app) *cobra.Command {
	var (
		input       string
		output      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a test preparation plan from a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, err := apiKeyFromEnv()
			if err != nil {
				return err
			}
			doc, err := loadSnapshot(input)
			if err != nil {
				return err
			}

			pipeline := newPipeline(a, session.NewMemoryStore())
			plan, err := pipeline.Prepare(cmd.Context(), doc, description, apiKey)
			if err != nil {
				return err
			}
			if plan.Error != "" {
				fmt.Fprintf(os.Stderr, "plan response unparseable: %s (raw response: %s)\n",
					plan.Error, plan.RecoveryPath)
			}

			var data []byte
			switch filepath.Ext(output) {
			case ".csv":
				content, err := export.PlanCSV(plan)
				if err != nil {
					return err
				}
				data = []byte(content)
			default:
				if data, err = export.PlanJSON(plan); err != nil {
					return err
				}
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write plan: %w", err)
			}

			fmt.Printf("Plan written to %s (%d tasks)\n", output, len(plan.Tasks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "metadata.json", "Snapshot input path")
	cmd.Flags().StringVarP(&output, "output", "o", "preparation_plan.json", "Plan output path (.json or .csv)")
	cmd.Flags().StringVar(&description, "use-cases", "", "Description of the org's use cases")
	return cmd
}
