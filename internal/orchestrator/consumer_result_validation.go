package orchestrator

import (
	"context"
	"encoding/json"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/platform/kafka"
	"fundingdiscovery/pkg/requestcontext"
)

// HandleSearchResult consumes a raw SearchResultEvent, excludes hosts the
// blacklist cache rejects (counting them in the session's
// blacklisted_skipped bucket), registers (or fetches) the host in the
// domain registry, and, when the domain is still eligible per the
// registry's shouldProcess rules, republishes it as a ValidatedResultEvent
// carrying the resolved domain id.
func (o *Orchestrator) HandleSearchResult(ctx context.Context, msg kafka.Message) error {
	var evt fd.SearchResultEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			Stage:           fd.StageResultValidation,
			ErrorType:       fd.ErrorCategoryParse,
			Message:         "malformed SearchResultEvent: " + err.Error(),
			OriginalPayload: msg.Value,
		})
		return nil
	}
	ctx = requestcontext.WithSessionID(ctx, evt.SessionID)

	if evt.Host == "" {
		// Stage 1 (domain extraction) lives in the pipeline proper; an
		// empty host here means the adapter returned an unparsable URL.
		// Let the scoring consumer's own extraction stage classify it
		// rather than duplicate that logic here.
		return o.forwardValidated(ctx, evt, pid.DomainID{})
	}

	if o.cfg.Blacklist != nil {
		blacklisted, err := o.cfg.Blacklist.IsBlacklisted(ctx, evt.Host)
		if err != nil {
			// Cache trouble is never fatal; fall through to the registry.
			o.log(ctx, "blacklist cache lookup failed", "error", err, "host", evt.Host)
		} else if blacklisted {
			delta := fd.SessionCounters{ResultsFound: 1, BlacklistedSkipped: 1}
			if err := o.cfg.Sessions.IncrementCounters(ctx, evt.SessionID, delta); err != nil {
				o.log(ctx, "failed to count blacklisted result", "error", err)
			}
			if o.cfg.Metrics != nil {
				o.cfg.Metrics.PipelineStageOutcomes.WithLabelValues("blacklist_check", "blocked").Inc()
			}
			return nil
		}
	}

	shouldProcess, err := o.cfg.Domains.ShouldProcess(ctx, evt.Host)
	if err != nil {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			SessionID:       evt.SessionID,
			Stage:           fd.StageResultValidation,
			ErrorType:       errorCategoryFor(err),
			Message:         err.Error(),
			OriginalPayload: mustMarshal(evt),
		})
		return nil
	}
	if !shouldProcess {
		// The registry has already judged this domain (low quality, no
		// funds this year, or inside its failure backoff window). Results
		// for it never enter processing, so no session counter moves.
		return nil
	}

	domainRow, err := o.cfg.Domains.RegisterOrGet(ctx, evt.Host, evt.SessionID)
	if err != nil {
		o.publishDeadLetter(ctx, fd.WorkflowErrorEvent{
			SessionID:       evt.SessionID,
			Stage:           fd.StageResultValidation,
			ErrorType:       errorCategoryFor(err),
			Message:         err.Error(),
			OriginalPayload: mustMarshal(evt),
		})
		return nil
	}

	return o.forwardValidated(ctx, evt, domainRow.ID)
}

func (o *Orchestrator) forwardValidated(ctx context.Context, evt fd.SearchResultEvent, domainID pid.DomainID) error {
	validated := fd.ValidatedResultEvent{SearchResultEvent: evt, DomainID: domainID}

	payload, err := json.Marshal(validated)
	if err != nil {
		return nil
	}
	if err := o.cfg.Producer.Publish(ctx, kafka.TopicSearchResultsValidated, kafka.SessionKey(evt.SessionID.String()), payload); err != nil {
		o.log(ctx, "failed to publish validated result", "error", err)
	}
	return nil
}
