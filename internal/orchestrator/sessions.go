package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/querygen"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
	"fundingdiscovery/pkg/platform/kafka"
)

// StartSession implements the POST /api/search/execute contract: it
// creates a DiscoverySession, generates queries per engine via the
// query generator, and publishes one SearchRequestEvent per (engine,
// query) pair. It returns the created session and the total number of
// queries generated across all engines.
func (o *Orchestrator) StartSession(ctx context.Context, criteria fd.SearchCriteria) (fd.DiscoverySession, int, error) {
	sess, err := o.cfg.Sessions.Create(ctx, fd.DiscoverySession{
		ID:        pid.NewSessionID(),
		Type:      fd.SessionTypeManual,
		Status:    fd.SessionStatusRunning,
		Criteria:  criteria,
		StartedAt: o.cfg.Clock(),
	})
	if err != nil {
		return fd.DiscoverySession{}, 0, fderrors.Wrap(fderrors.CodeInternal, "create session failed", err)
	}
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.SessionsStarted.Inc()
		o.cfg.Metrics.ActiveSessions.Inc()
	}

	maxResults := criteria.MaxResultsPerQuery
	if maxResults <= 0 {
		maxResults = 20
	}

	engines := make([]querygen.EngineCapability, 0)
	for _, p := range o.cfg.Registry.All() {
		caps := p.Capabilities()
		engines = append(engines, querygen.EngineCapability{
			Engine:                     p.Engine(),
			SupportsKeywordQueries:     caps.SupportsKeywordQueries,
			SupportsAIOptimizedQueries: caps.SupportsAIOptimizedQueries,
		})
	}

	queriesByEngine, _ := o.cfg.Generator.GenerateMulti(ctx, sess.ID, engines, querygen.Request{
		Categories:     criteria.Categories,
		Geographies:    criteria.Geographies,
		RecipientTypes: criteria.RecipientTypes,
		ProjectScale:   criteria.ProjectScale,
		Language:       criteria.Language,
		Count:          5,
	})

	total := 0
	now := o.cfg.Clock()
	for engine, queries := range queriesByEngine {
		for _, query := range queries {
			evt := fd.SearchRequestEvent{
				SessionID:  sess.ID,
				Query:      query,
				Engine:     engine,
				MaxResults: maxResults,
				Timestamp:  now,
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if err := o.cfg.Producer.Publish(ctx, kafka.TopicSearchRequests, kafka.SessionKey(sess.ID.String()), payload); err != nil {
				o.log(ctx, "failed to publish search request", "error", err, "session_id", sess.ID.String(), "engine", engine)
				continue
			}
			total++
		}
	}

	return sess, total, nil
}

// finalizeSoftDeadline transitions a session stuck past its soft deadline
// to FAILED.
func (o *Orchestrator) finalizeSoftDeadline(ctx context.Context, sess fd.DiscoverySession, now time.Time) error {
	if sess.Duration(now) < o.cfg.SoftDeadline {
		return nil
	}
	_, err := o.cfg.Sessions.Complete(ctx, sess.ID, fd.SessionStatusFailed)
	if err == nil {
		o.forgetState(sess.ID)
		if o.cfg.Metrics != nil {
			o.cfg.Metrics.SessionsCompleted.WithLabelValues(string(fd.SessionStatusFailed)).Inc()
			o.cfg.Metrics.ActiveSessions.Dec()
		}
	}
	return err
}
