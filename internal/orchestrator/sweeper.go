package orchestrator

import (
	"context"
	"time"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

// quietSweeps is how many consecutive sweeps a session's counters must
// stay unchanged (with at least one result processed) before the sweep
// finalizes it as COMPLETED. The stages are fully asynchronous, so there
// is no single point that knows the last result has arrived; counter
// quiescence is the completion signal.
const quietSweeps = 2

type sweepSnapshot struct {
	counters fd.SessionCounters
	quiet    int
}

// RunSoftDeadlineSweep periodically finalizes sessions: RUNNING sessions
// past their soft deadline are FAILED, and sessions whose counters have
// been quiescent across consecutive sweeps are COMPLETED. It blocks until
// ctx is cancelled; callers run it in its own goroutine.
func (o *Orchestrator) RunSoftDeadlineSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	snapshots := make(map[pid.SessionID]sweepSnapshot)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sweepOnce(ctx, snapshots)
		}
	}
}

func (o *Orchestrator) sweepOnce(ctx context.Context, snapshots map[pid.SessionID]sweepSnapshot) {
	running, err := o.cfg.Sessions.ListRunning(ctx)
	if err != nil {
		o.log(ctx, "session sweep: list running failed", "error", err)
		return
	}

	live := make(map[pid.SessionID]bool, len(running))
	now := o.cfg.Clock()
	for _, sess := range running {
		live[sess.ID] = true

		if sess.Duration(now) >= o.cfg.SoftDeadline {
			if err := o.finalizeSoftDeadline(ctx, sess, now); err != nil {
				o.log(ctx, "session sweep: finalize failed", "error", err, "session_id", sess.ID.String())
			} else {
				delete(snapshots, sess.ID)
				if o.cfg.Logger != nil {
					o.cfg.Logger.WarnContext(ctx, "session exceeded soft deadline, marked FAILED", "session_id", sess.ID.String())
				}
			}
			continue
		}

		prev, seen := snapshots[sess.ID]
		if seen && prev.counters == sess.Counters && sess.Counters.Total() > 0 {
			prev.quiet++
		} else {
			prev = sweepSnapshot{counters: sess.Counters}
		}

		if prev.quiet >= quietSweeps {
			if err := o.completeQuiescent(ctx, sess); err != nil {
				o.log(ctx, "session sweep: complete failed", "error", err, "session_id", sess.ID.String())
			} else {
				delete(snapshots, sess.ID)
			}
			continue
		}
		snapshots[sess.ID] = prev
	}

	for id := range snapshots {
		if !live[id] {
			delete(snapshots, id)
		}
	}
}

func (o *Orchestrator) completeQuiescent(ctx context.Context, sess fd.DiscoverySession) error {
	_, err := o.cfg.Sessions.Complete(ctx, sess.ID, fd.SessionStatusCompleted)
	if err == nil {
		o.forgetState(sess.ID)
		if o.cfg.Metrics != nil {
			o.cfg.Metrics.SessionsCompleted.WithLabelValues(string(fd.SessionStatusCompleted)).Inc()
			o.cfg.Metrics.ActiveSessions.Dec()
		}
	}
	return err
}
