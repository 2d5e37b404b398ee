package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fundingdiscovery/pkg/platform/kafka"
)

// StageConsumers is the set of kafka.Consumer instances (one per topic,
// typically sharing a consumer group name across process replicas) an
// orchestrator process drives. Each field is optional so a deployment can
// run a subset of stages in separate processes if desired.
type StageConsumers struct {
	SearchRequests      *kafka.Consumer
	SearchResultsRaw    *kafka.Consumer
	SearchResultsValid  *kafka.Consumer
}

// Run drives every configured consumer until ctx is cancelled, returning
// the first error encountered (a Consumer.Run only returns on ctx
// cancellation or client close, per pkg/platform/kafka's contract).
func (o *Orchestrator) Run(ctx context.Context, consumers StageConsumers) error {
	grp, gctx := errgroup.WithContext(ctx)

	if consumers.SearchRequests != nil {
		grp.Go(func() error { return consumers.SearchRequests.Run(gctx, o.HandleSearchRequest) })
	}
	if consumers.SearchResultsRaw != nil {
		grp.Go(func() error { return consumers.SearchResultsRaw.Run(gctx, o.HandleSearchResult) })
	}
	if consumers.SearchResultsValid != nil {
		grp.Go(func() error { return consumers.SearchResultsValid.Run(gctx, o.HandleValidatedResult) })
	}

	return grp.Wait()
}

// ReplayDeadLetter re-publishes a WorkflowErrorEvent's original payload to
// the topic its stage originated from, for the CLI's "replay a dead-letter
// event" operation.
func (o *Orchestrator) ReplayDeadLetter(ctx context.Context, stage string, sessionKey string, originalPayload []byte) error {
	topic := topicForStage(stage)
	return o.cfg.Producer.Publish(ctx, topic, kafka.SessionKey(sessionKey), originalPayload)
}

func topicForStage(stage string) string {
	switch stage {
	case "RESULT_VALIDATION":
		return kafka.TopicSearchResultsRaw
	case "RESULT_SCORING", "CANDIDATE_PERSISTENCE":
		return kafka.TopicSearchResultsValidated
	default:
		return kafka.TopicSearchRequests
	}
}
