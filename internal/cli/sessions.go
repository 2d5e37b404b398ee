package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fundingdiscovery/internal/bootstrap"
)

var (
	sessionsPage int
	sessionsSize int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent discovery sessions with their statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context, rt *bootstrap.Runtime) error {
			rows, total, err := rt.Sessions.List(ctx, sessionsPage, sessionsSize)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tTYPE\tSTATUS\tSTARTED\tRESULTS\tCANDIDATES\tDUP\tSPAM\tBLACKLISTED")
			for _, s := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
					s.ID, s.Type, s.Status, s.StartedAt.Format("2006-01-02 15:04"),
					s.Counters.ResultsFound, s.Counters.CandidatesCreated,
					s.Counters.DuplicatesSkipped, s.Counters.SpamFiltered,
					s.Counters.BlacklistedSkipped)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("%d of %d sessions (page %d)\n", len(rows), total, sessionsPage)
			return nil
		})
	},
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsPage, "page", 0, "0-indexed page")
	sessionsCmd.Flags().IntVar(&sessionsSize, "size", 20, "page size")
}
