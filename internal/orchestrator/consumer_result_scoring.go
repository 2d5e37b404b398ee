package orchestrator

import (
	"context"
	"encoding/json"

	"fundingdiscovery/internal/adapter"
	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/pipeline"
	"fundingdiscovery/pkg/platform/kafka"
	"fundingdiscovery/pkg/requestcontext"
)

// HandleValidatedResult consumes a ValidatedResultEvent and runs it
// through the seven-stage result-processing pipeline, then folds the
// outcome into the session's running counters. Consumer idempotency is
// provided by candidate.Store.Create's (session, domain) uniqueness, so
// redelivery of the same event is safe.
func (o *Orchestrator) HandleValidatedResult(ctx context.Context, msg kafka.Message) error {
	var evt fd.ValidatedResultEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			Stage:           fd.StageResultScoring,
			ErrorType:       fd.ErrorCategoryParse,
			Message:         "malformed ValidatedResultEvent: " + err.Error(),
			OriginalPayload: msg.Value,
		})
		return nil
	}
	ctx = requestcontext.WithSessionID(ctx, evt.SessionID)

	sess, err := o.cfg.Sessions.Get(ctx, evt.SessionID)
	if err != nil {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			SessionID:       evt.SessionID,
			Stage:           fd.StageResultScoring,
			ErrorType:       errorCategoryFor(err),
			Message:         err.Error(),
			OriginalPayload: mustMarshal(evt),
		})
		return nil
	}
	if sess.IsTerminal() {
		// In-flight messages for a session already failed by the
		// soft-deadline sweep are stale; drop them.
		return nil
	}

	state := o.stateFor(evt.SessionID)
	result, err := o.cfg.Pipeline.ProcessOne(ctx, state, sess.Criteria, adapter.SearchResult{
		URL:          evt.URL,
		Host:         evt.Host,
		Title:        evt.Title,
		Description:  evt.Description,
		Rank:         evt.Rank,
		Engine:       evt.Engine,
		DiscoveredAt: evt.Timestamp,
		SessionID:    evt.SessionID.String(),
	})
	if err != nil {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			SessionID:       evt.SessionID,
			Stage:           fd.StageCandidatePersist,
			ErrorType:       errorCategoryFor(err),
			Message:         err.Error(),
			OriginalPayload: mustMarshal(evt),
		})
		return nil
	}

	delta := deltaFor(result.Outcome)
	if err := o.cfg.Sessions.IncrementCounters(ctx, evt.SessionID, delta); err != nil {
		o.log(ctx, "failed to increment session counters", "error", err)
	}
	return nil
}

// deltaFor builds the single-bucket SessionCounters increment for one
// pipeline outcome.
func deltaFor(outcome pipeline.Outcome) fd.SessionCounters {
	c := fd.SessionCounters{ResultsFound: 1}
	switch outcome {
	case pipeline.OutcomeInvalidURL:
		c.InvalidURLsSkipped = 1
	case pipeline.OutcomeSpamTLD:
		c.SpamFiltered = 1
	case pipeline.OutcomeDuplicate:
		c.DuplicatesSkipped = 1
	case pipeline.OutcomeBlacklisted:
		c.BlacklistedSkipped = 1
	case pipeline.OutcomeHighConfidence:
		c.HighConfidence = 1
		c.CandidatesCreated = 1
	case pipeline.OutcomeLowConfidence:
		c.LowConfidence = 1
		c.CandidatesCreated = 1
	}
	return c
}
