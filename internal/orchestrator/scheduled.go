package orchestrator

import (
	"context"
	"encoding/json"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/searchquery"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
	"fundingdiscovery/pkg/platform/kafka"
)

// RunScheduledQueries executes the scheduled path over the query library: every enabled query due on the given weekday gets
// its own SCHEDULED session, with one SearchRequestEvent per target
// engine. The query text is published verbatim; the generator is not
// involved, since the library rows are already operator-curated queries.
// Returns the number of sessions started.
func (o *Orchestrator) RunScheduledQueries(ctx context.Context, store searchquery.Store, day int) (int, error) {
	due, err := store.DueForDay(ctx, day)
	if err != nil {
		return 0, fderrors.Wrap(fderrors.CodeInternal, "list due queries failed", err)
	}

	started := 0
	for _, q := range due {
		if err := o.startScheduled(ctx, q); err != nil {
			o.log(ctx, "scheduled query failed to start", "error", err, "query_id", q.ID.String())
			continue
		}
		started++
	}
	return started, nil
}

func (o *Orchestrator) startScheduled(ctx context.Context, q fd.SearchQuery) error {
	sess, err := o.cfg.Sessions.Create(ctx, fd.DiscoverySession{
		ID:        pid.NewSessionID(),
		Type:      fd.SessionTypeScheduled,
		Status:    fd.SessionStatusRunning,
		Criteria:  fd.SearchCriteria{Categories: q.Tags},
		StartedAt: o.cfg.Clock(),
	})
	if err != nil {
		return fderrors.Wrap(fderrors.CodeInternal, "create scheduled session failed", err)
	}
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.SessionsStarted.Inc()
		o.cfg.Metrics.ActiveSessions.Inc()
	}

	engines := q.Engines
	if len(engines) == 0 {
		for _, p := range o.cfg.Registry.All() {
			engines = append(engines, p.Engine())
		}
	}

	now := o.cfg.Clock()
	for _, engine := range engines {
		evt := fd.SearchRequestEvent{
			SessionID:  sess.ID,
			Query:      q.Text,
			Engine:     engine,
			MaxResults: 20,
			Timestamp:  now,
		}
		payload, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		if err := o.cfg.Producer.Publish(ctx, kafka.TopicSearchRequests, kafka.SessionKey(sess.ID.String()), payload); err != nil {
			o.log(ctx, "failed to publish scheduled search request", "error", err, "session_id", sess.ID.String(), "engine", engine)
		}
	}
	return nil
}
