package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forgelabs/promptforge/export"
	"github.com/forgelabs/promptforge/prompts"
	"github.com/forgelabs/promptforge/session"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		input       string
		output      string
		description string
		count       int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate test prompts from a snapshot",
		Long: `Generate runs the default use cases against a saved metadata
snapshot and writes the resulting test prompts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, err := apiKeyFromEnv()
			if err != nil {
				return err
			}
			doc, err := loadSnapshot(input)
			if err != nil {
				return err
			}

			useCases := prompts.DefaultUseCases()
			if count > 0 {
				for i := range useCases {
					useCases[i].PromptCount = count
				}
			}

			store := session.NewMemoryStore()
			sess := session.New(doc, description, useCases, apiKey)
			if err := store.Put(cmd.Context(), sess); err != nil {
				return err
			}

			pipeline := newPipeline(a, store)
			result, err := pipeline.Generate(cmd.Context(), sess.ID, useCases)
			if err != nil {
				return err
			}

			var data []byte
			switch filepath.Ext(output) {
			case ".csv":
				content, err := export.PromptsCSV(result.Prompts)
				if err != nil {
					return err
				}
				data = []byte(content)
			default:
				final, err := store.Get(cmd.Context(), sess.ID)
				if err != nil {
					return err
				}
				if data, err = export.ResultsJSON(final); err != nil {
					return err
				}
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write prompts: %w", err)
			}

			fmt.Printf("Generated %d prompts (input tokens: %d, output tokens: %d) to %s\n",
				result.TotalPrompts, result.TokensUsed.InputTokens, result.TokensUsed.OutputTokens, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "metadata.json", "Snapshot input path")
	cmd.Flags().StringVarP(&output, "output", "o", "test_prompts.json", "Prompts output path (.json or .csv)")
	cmd.Flags().StringVar(&description, "use-cases", "", "Description of the org's use cases")
	cmd.Flags().IntVar(&count, "count", 0, "Prompts per use case (0 = use case default)")
	return cmd
}
