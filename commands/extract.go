package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgelabs/promptforge/export"
	"github.com/forgelabs/promptforge/session"
	"github.com/forgelabs/promptforge/workflow"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		output      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract org metadata to a snapshot file",
		Long: `Extract connects to the org named by SF_USERNAME, SF_PASSWORD,
SF_SECURITY_TOKEN, and SF_DOMAIN, collects the metadata snapshot including
the model analysis, and writes it as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := credentialsFromEnv()
			if err != nil {
				return err
			}
			apiKey, err := apiKeyFromEnv()
			if err != nil {
				return err
			}

			store := session.NewMemoryStore()
			pipeline := newPipeline(a, store)

			result, err := pipeline.Extract(cmd.Context(), workflow.ExtractRequest{
				Credentials:        creds,
				APIKey:             apiKey,
				UseCaseDescription: description,
			})
			if err != nil {
				return err
			}

			sess, err := store.Get(cmd.Context(), result.SessionID)
			if err != nil {
				return err
			}

			data, err := export.MetadataJSON(sess.Document)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}

			fmt.Printf("Snapshot written to %s (%d objects, %d warnings)\n",
				output, len(sess.Document.Objects), len(sess.Document.Warnings))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "metadata.json", "Snapshot output path")
	cmd.Flags().StringVar(&description, "use-cases", "", "Description of the org's use cases")
	return cmd
}
