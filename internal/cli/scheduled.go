package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fundingdiscovery/internal/bootstrap"
)

var scheduledDay int

var scheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "Run the query library's scheduled searches due for a weekday.",
	RunE: func(cmd *cobra.Command, args []string) error {
		day := scheduledDay
		if day < 0 {
			day = int(time.Now().Weekday())
		}
		return withRuntime(func(ctx context.Context, rt *bootstrap.Runtime) error {
			started, err := rt.Orchestrator.RunScheduledQueries(ctx, rt.SearchQueries, day)
			if err != nil {
				return err
			}
			fmt.Printf("started %d scheduled session(s) for weekday %d\n", started, day)
			return nil
		})
	},
}

func init() {
	scheduledCmd.Flags().IntVar(&scheduledDay, "day", -1, "weekday to run (0=Sunday); defaults to today")
}
