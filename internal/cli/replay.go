package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fundingdiscovery/internal/bootstrap"
	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/platform/kafka"
)

var replayScanTimeout time.Duration

var replayCmd = &cobra.Command{
	Use:   "replay <error-id>",
	Short: "Re-publish a dead-lettered event's original payload onto its originating topic.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		errorID, err := pid.ParseErrorID(args[0])
		if err != nil {
			return err
		}

		return withRuntime(func(ctx context.Context, rt *bootstrap.Runtime) error {
			scanCtx, cancel := context.WithTimeout(ctx, replayScanTimeout)
			defer cancel()

			var found *fd.WorkflowErrorEvent
			err := kafka.ScanTopic(scanCtx, rt.Config.BusBrokers, kafka.TopicWorkflowErrors, func(msg kafka.Message) bool {
				var evt fd.WorkflowErrorEvent
				if err := json.Unmarshal(msg.Value, &evt); err != nil {
					return true // skip unparseable records, keep scanning
				}
				if evt.ErrorID == errorID {
					found = &evt
					return false
				}
				return true
			})
			if err != nil {
				return err
			}
			if found == nil {
				return fmt.Errorf("no dead letter with error id %s found on %s", errorID, kafka.TopicWorkflowErrors)
			}
			if !found.Valid() {
				return fmt.Errorf("dead letter %s has no replayable payload", errorID)
			}

			if err := rt.Orchestrator.ReplayDeadLetter(ctx, string(found.Stage), found.SessionID.String(), found.OriginalPayload); err != nil {
				return err
			}
			fmt.Printf("replayed dead letter %s (stage=%s, session=%s)\n", errorID, found.Stage, found.SessionID)
			return nil
		})
	},
}

func init() {
	replayCmd.Flags().DurationVar(&replayScanTimeout, "scan-timeout", 30*time.Second, "how long to scan the dead-letter topic before giving up")
}
