package orchestrator

import (
	"context"
	"encoding/json"

	"fundingdiscovery/internal/adapter"
	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/pkg/platform/kafka"
	"fundingdiscovery/pkg/requestcontext"
)

// HandleSearchRequest consumes a SearchRequestEvent, invokes the matching
// engine adapter, and publishes one SearchResultEvent per hit.
func (o *Orchestrator) HandleSearchRequest(ctx context.Context, msg kafka.Message) error {
	var evt fd.SearchRequestEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			Stage:           fd.StageSearchExecution,
			ErrorType:       fd.ErrorCategoryParse,
			Message:         "malformed SearchRequestEvent: " + err.Error(),
			OriginalPayload: msg.Value,
		})
		return nil
	}
	ctx = requestcontext.WithSessionID(ctx, evt.SessionID)

	if o.engineDisabled(evt.SessionID, evt.Engine) {
		// The engine already failed auth this session; discard the
		// remaining queries without contacting it.
		return nil
	}

	provider, ok := o.cfg.Registry.Get(evt.Engine)
	if !ok {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			SessionID:       evt.SessionID,
			Stage:           fd.StageSearchExecution,
			ErrorType:       fd.ErrorCategoryDisabled,
			Message:         "no adapter registered for engine " + evt.Engine,
			OriginalPayload: msg.Value,
		})
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	if o.cfg.Metrics != nil {
		o.cfg.Metrics.AdapterRequests.WithLabelValues(evt.Engine).Inc()
	}
	start := o.cfg.Clock()
	results, err := provider.Search(callCtx, evt.Query, evt.MaxResults, evt.SessionID.String())
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.AdapterLatency.WithLabelValues(evt.Engine).Observe(o.cfg.Clock().Sub(start).Seconds())
	}
	if err != nil {
		return o.handleSearchError(ctx, evt, msg, err)
	}

	now := o.cfg.Clock()
	for _, r := range results {
		out := fd.SearchResultEvent{
			SessionID:   evt.SessionID,
			URL:         r.URL,
			Host:        r.Host,
			Title:       r.Title,
			Description: r.Description,
			Engine:      r.Engine,
			Rank:        r.Rank,
			Timestamp:   now,
		}
		payload, err := json.Marshal(out)
		if err != nil {
			continue
		}
		if err := o.cfg.Producer.Publish(ctx, kafka.TopicSearchResultsRaw, kafka.SessionKey(evt.SessionID.String()), payload); err != nil {
			o.log(ctx, "failed to publish search result", "error", err)
		}
	}

	if err := o.cfg.Sessions.RecordEngineStats(ctx, evt.SessionID, fd.EngineStatistics{
		Engine:        evt.Engine,
		QueriesIssued: 1,
		ResultsFound:  len(results),
	}); err != nil {
		o.log(ctx, "failed to record engine stats", "error", err)
	}

	return nil
}

// handleSearchError applies the per-category adapter failure policy: rate limits and circuit-open are expected degraded states and
// never dead-lettered; everything else publishes a WorkflowErrorEvent but
// still acknowledges the triggering message (no poison-message loop).
func (o *Orchestrator) handleSearchError(ctx context.Context, evt fd.SearchRequestEvent, msg kafka.Message, err error) error {
	category := adapter.Category(err)
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.AdapterErrors.WithLabelValues(evt.Engine, string(category)).Inc()
	}

	switch category {
	case fd.ErrorCategoryRateLimited, fd.ErrorCategoryCircuitOpen:
		_ = o.cfg.Sessions.RecordEngineStats(ctx, evt.SessionID, fd.EngineStatistics{Engine: evt.Engine, QueriesIssued: 1, Errors: 1})
		return nil
	case fd.ErrorCategoryAuth:
		// One error event, then the engine is dead for this session.
		o.disableEngine(evt.SessionID, evt.Engine)
		_ = o.cfg.Sessions.RecordEngineStats(ctx, evt.SessionID, fd.EngineStatistics{Engine: evt.Engine, QueriesIssued: 1, Errors: 1})
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			SessionID:       evt.SessionID,
			Stage:           fd.StageSearchExecution,
			ErrorType:       category,
			Message:         err.Error(),
			OriginalPayload: mustMarshal(evt),
			Timestamp:       o.cfg.Clock(),
		})
		return nil
	default:
		_ = o.cfg.Sessions.RecordEngineStats(ctx, evt.SessionID, fd.EngineStatistics{Engine: evt.Engine, QueriesIssued: 1, Errors: 1})
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			SessionID:       evt.SessionID,
			Stage:           fd.StageSearchExecution,
			ErrorType:       category,
			Message:         err.Error(),
			OriginalPayload: mustMarshal(evt),
			Timestamp:       o.cfg.Clock(),
		})
		return nil
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
