package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fundingdiscovery/internal/bootstrap"
	fd "fundingdiscovery/internal/domain"
)

var (
	triggerCategories     []string
	triggerGeographies    []string
	triggerRecipientTypes []string
	triggerProjectScale   string
	triggerLanguage       string
	triggerMaxResults     int
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Start a manual discovery session with a canned criteria payload.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(triggerCategories) == 0 || len(triggerGeographies) == 0 || len(triggerRecipientTypes) == 0 {
			return fmt.Errorf("--categories, --geographies, and --recipient-types each require at least one value")
		}
		criteria := fd.SearchCriteria{
			Categories:         triggerCategories,
			Geographies:        triggerGeographies,
			RecipientTypes:     triggerRecipientTypes,
			ProjectScale:       triggerProjectScale,
			Language:           triggerLanguage,
			MaxResultsPerQuery: triggerMaxResults,
		}
		return withRuntime(func(ctx context.Context, rt *bootstrap.Runtime) error {
			sess, queriesGenerated, err := rt.Orchestrator.StartSession(ctx, criteria)
			if err != nil {
				return err
			}
			fmt.Printf("session %s started (status=%s), %d queries generated\n",
				sess.ID, sess.Status, queriesGenerated)
			return nil
		})
	},
}

func init() {
	triggerCmd.Flags().StringSliceVar(&triggerCategories, "categories", nil, "funding categories to search for")
	triggerCmd.Flags().StringSliceVar(&triggerGeographies, "geographies", nil, "target geographic regions")
	triggerCmd.Flags().StringSliceVar(&triggerRecipientTypes, "recipient-types", nil, "eligible recipient types")
	triggerCmd.Flags().StringVar(&triggerProjectScale, "project-scale", "", "desired project scale")
	triggerCmd.Flags().StringVar(&triggerLanguage, "language", "en", "query language")
	triggerCmd.Flags().IntVar(&triggerMaxResults, "max-results", 20, "max results per query (10-100)")
}
