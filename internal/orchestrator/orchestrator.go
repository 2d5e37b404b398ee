// Package orchestrator wires the event-bus consumers and session
// lifecycle: publishing one SearchRequestEvent per (engine, query) pair
// at session start, the three per-stage consumers (search execution,
// result validation, result scoring), the dead-letter path every consumer
// falls back to on exception, and the soft-deadline sweep that fails
// stale sessions.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fundingdiscovery/internal/adapter"
	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/pipeline"
	"fundingdiscovery/internal/platform/metrics"
	"fundingdiscovery/internal/querygen"
	"fundingdiscovery/internal/store/candidate"
	"fundingdiscovery/internal/store/domainregistry"
	"fundingdiscovery/internal/store/session"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
	"fundingdiscovery/pkg/platform/kafka"
	"fundingdiscovery/pkg/requestcontext"
)

// Publisher is the narrow interface the orchestrator needs from
// kafka.Producer, kept as an interface so tests can substitute a recorder.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// BlacklistChecker is the slice of cache.BlacklistCache the validation
// consumer reads through, so blacklisted hosts are excluded via the
// write-through cache rather than a store round trip per result.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, host string) (bool, error)
}

// Config wires every collaborator the orchestrator depends on.
type Config struct {
	Producer       Publisher
	Sessions       session.Store
	Domains        domainregistry.Store
	Candidates     candidate.Store
	Blacklist      BlacklistChecker
	Registry       *adapter.Registry
	Generator      *querygen.Generator
	Pipeline       *pipeline.Pipeline
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	Clock          func() time.Time
	SoftDeadline   time.Duration // sessions past this are swept to FAILED
	RequestTimeout time.Duration // per-message adapter call deadline
}

// Orchestrator owns session creation, the three pipeline-stage consumers,
// and the soft-deadline sweep.
type Orchestrator struct {
	cfg Config

	mu       sync.Mutex
	sessions map[pid.SessionID]*pipeline.SessionState
	disabled map[string]bool // "<sessionID>/<engine>" pairs disabled after an auth failure
}

// New constructs an Orchestrator with working defaults for SoftDeadline
// and RequestTimeout.
func New(cfg Config) *Orchestrator {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.SoftDeadline == 0 {
		cfg.SoftDeadline = 30 * time.Minute
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 20 * time.Second
	}
	return &Orchestrator{
		cfg:      cfg,
		sessions: make(map[pid.SessionID]*pipeline.SessionState),
		disabled: make(map[string]bool),
	}
}

// stateFor returns the live SessionState for sessionID, creating one on
// first use. The scoring consumer is tolerant of out-of-order raw events
// for a session, so this lazy creation is safe: whichever
// result arrives first initializes the seen-host set.
func (o *Orchestrator) stateFor(sessionID pid.SessionID) *pipeline.SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.sessions[sessionID]
	if !ok {
		st = pipeline.NewSessionState(sessionID)
		o.sessions[sessionID] = st
	}
	return st
}

func disabledKey(sessionID pid.SessionID, engine string) string {
	return sessionID.String() + "/" + engine
}

// disableEngine marks an (session, engine) pair dead after an auth
// failure; remaining queries for that engine in the session are discarded
// without contacting the engine.
func (o *Orchestrator) disableEngine(sessionID pid.SessionID, engine string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disabled[disabledKey(sessionID, engine)] = true
}

func (o *Orchestrator) engineDisabled(sessionID pid.SessionID, engine string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disabled[disabledKey(sessionID, engine)]
}

// forgetState drops a session's in-memory pipeline state once it reaches
// a terminal status, so long-lived processes don't accumulate memory for
// every session ever run.
func (o *Orchestrator) forgetState(sessionID pid.SessionID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.sessions, sessionID)
	prefix := sessionID.String() + "/"
	for k := range o.disabled {
		if strings.HasPrefix(k, prefix) {
			delete(o.disabled, k)
		}
	}
}

func (o *Orchestrator) log(ctx context.Context, msg string, args ...any) {
	if o.cfg.Logger == nil {
		return
	}
	if sid := requestcontext.SessionID(ctx); sid != (pid.SessionID{}) {
		args = append(args, "session_id", sid.String())
	}
	o.cfg.Logger.ErrorContext(ctx, msg, args...)
}

// publishDeadLetter implements the dead-letter contract: on exception, a
// WorkflowErrorEvent carrying the original payload is published and the
// triggering message is still acknowledged, so a poison message can never
// wedge a partition. Callers treat this as best-effort and continue
// regardless of whether the publish itself succeeds.
func (o *Orchestrator) publishDeadLetter(ctx context.Context, evt fd.WorkflowErrorEvent) {
	if evt.ErrorID == (pid.ErrorID{}) {
		evt.ErrorID = pid.NewErrorID()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = o.cfg.Clock()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		o.log(ctx, "failed to marshal dead letter", "error", err, "stage", evt.Stage)
		return
	}
	if err := o.cfg.Producer.Publish(ctx, kafka.TopicWorkflowErrors, kafka.SessionKey(evt.SessionID.String()), payload); err != nil {
		o.log(ctx, "failed to publish dead letter", "error", err, "stage", evt.Stage)
		return
	}
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.DeadLettersPublished.WithLabelValues(string(evt.Stage)).Inc()
	}
}

// errorCategoryFor classifies any error into the normalized taxonomy, for
// errors raised outside the adapter layer (which already classifies its
// own failures via adapter.Category).
func errorCategoryFor(err error) fd.ErrorCategory {
	var fe *fderrors.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fderrors.CodeTimeout:
			return fd.ErrorCategoryTimeout
		case fderrors.CodeRateLimited:
			return fd.ErrorCategoryRateLimited
		case fderrors.CodeCircuitOpen:
			return fd.ErrorCategoryCircuitOpen
		case fderrors.CodeAuth:
			return fd.ErrorCategoryAuth
		case fderrors.CodeParse, fderrors.CodeInvalidInput:
			return fd.ErrorCategoryParse
		}
	}
	return fd.ErrorCategoryUnknown
}
