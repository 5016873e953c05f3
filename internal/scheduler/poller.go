package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/tgifai/thursday/internal/dispatch"
	"github.com/tgifai/thursday/internal/ledger"
	"github.com/tgifai/thursday/internal/lock"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/pkg/prometheus"
	"github.com/tgifai/thursday/internal/rule"
)

// poll runs ticks until the wall clock reaches until or ctx ends.
func (s *Scheduler) poll(ctx context.Context, until time.Time) {
	for ctx.Err() == nil {
		now := s.clock()
		if !now.Before(until) {
			return
		}

		wait, err := s.tick(logs.WithNewLogID(ctx))
		if err != nil {
			prometheus.PollErrors.Inc()
			logs.CtxError(ctx, "[poller] tick failed, backing off %s: %v", wait, err)
		}

		// wake at the boundary rather than sleeping into the next day
		if left := until.Sub(s.clock()); wait > left {
			wait = left
		}
		if !s.sleep(ctx, wait) {
			return
		}
	}
}

// tick is one poller iteration. It returns how long to wait before the
// next one. Errors and panics are contained here; the caller only logs.
func (s *Scheduler) tick(ctx context.Context) (wait time.Duration, err error) {
	prometheus.PollTicks.Inc()

	var locked bool
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in tick: %v\n%s", r, debug.Stack())
			wait = s.opts.ErrorBackoff
		}
		if locked {
			s.release(ctx)
		}
	}()

	now := s.clock()
	s.purgeOnNewDay(ctx, now)

	if len(s.pending(now)) == 0 {
		return s.opts.PollInterval, nil
	}

	ok, err := s.deps.Locker.TryAcquire(ctx)
	if err != nil {
		return s.opts.ErrorBackoff, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		prometheus.LockContended.Inc()
		logs.CtxInfo(ctx, "[poller] lock busy, backing off %s", s.opts.BusyBackoff)
		return s.opts.BusyBackoff, nil
	}
	locked = true

	// another instance may have fired while we waited for the lock
	if err := s.deps.Ledger.Reload(); err != nil {
		return s.opts.ErrorBackoff, fmt.Errorf("reload ledger: %w", err)
	}

	fired := 0
	var errs []error
	for _, r := range s.pending(now) {
		ok, err := s.fireOne(ctx, r, now)
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			fired++
		}
	}

	if len(errs) > 0 {
		return s.opts.ErrorBackoff, errors.Join(errs...)
	}
	if fired == 0 {
		return s.opts.PollInterval, nil
	}
	return waitAfterFiring(s.clock()), nil
}

// fireOne marks and dispatches one due rule. A panic while dispatching is
// returned as an error so coinciding rules still fire; the slot stays marked.
func (s *Scheduler) fireOne(ctx context.Context, r rule.Rule, now time.Time) (fired bool, err error) {
	key := ledger.KeyFor(now, r.ID)
	if err := s.deps.Ledger.MarkFired(key); err != nil {
		if !errors.Is(err, ledger.ErrAlreadyFired) {
			logs.CtxWarn(ctx, "[poller] mark %s failed, skipping this tick: %v", key, err)
		}
		return false, nil
	}
	prometheus.SlotsFired.WithLabelValues(r.ID).Inc()
	logs.CtxInfo(ctx, "[poller] firing %s", key)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic dispatching %s: %v\n%s", key, p, debug.Stack())
		}
	}()
	s.deps.Dispatcher.Dispatch(ctx, r, key, s.deps.Recipients, dispatch.WithTime(now))
	return true, nil
}

// pending returns the rules due at now whose slot has not fired yet.
func (s *Scheduler) pending(now time.Time) []rule.Rule {
	due := s.deps.Rules.DueRules(now)
	out := due[:0]
	for _, r := range due {
		if !s.deps.Ledger.HasFired(ledger.KeyFor(now, r.ID)) {
			out = append(out, r)
		}
	}
	return out
}

// purgeOnNewDay drops yesterday's ledger entries once per date. The file
// rewrite happens under the lock; when it is busy the purge is retried on
// the next tick.
func (s *Scheduler) purgeOnNewDay(ctx context.Context, now time.Time) {
	today := now.Format(time.DateOnly)

	s.mu.Lock()
	done := s.lastPurge == today
	s.mu.Unlock()
	if done {
		return
	}

	ok, err := s.deps.Locker.TryAcquire(ctx)
	if err != nil || !ok {
		if err != nil {
			logs.CtxWarn(ctx, "[poller] purge skipped: %v", err)
		}
		return
	}
	defer s.release(ctx)

	dropped, err := s.deps.Ledger.PurgeStale(now)
	if err != nil {
		logs.CtxWarn(ctx, "[poller] purge ledger: %v", err)
		return
	}
	if dropped > 0 {
		logs.CtxInfo(ctx, "[poller] purged %d stale ledger entries", dropped)
	}

	if s.deps.Journal != nil {
		if err := s.deps.Journal.Compact(journalKeep); err != nil {
			logs.CtxWarn(ctx, "[poller] compact journal: %v", err)
		}
	}

	s.mu.Lock()
	s.lastPurge = today
	s.mu.Unlock()
}

func (s *Scheduler) release(ctx context.Context) {
	if err := s.deps.Locker.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, lock.ErrNotHeld) {
		logs.CtxWarn(ctx, "[poller] release lock: %v", err)
	}
}

// waitAfterFiring sleeps past the current minute so the slot cannot match
// again, and never less than minFiredWait.
func waitAfterFiring(now time.Time) time.Duration {
	wait := now.Truncate(time.Minute).Add(time.Minute + nextMinutePad).Sub(now)
	if wait < minFiredWait {
		wait = minFiredWait
	}
	return wait
}
