package scheduler

import (
	"context"
	"time"

	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/pkg/prometheus"
	"github.com/tgifai/thursday/internal/rule"
)

// plan decides what the controller does at now: arm the poller until the
// returned time, or sleep until it.
func (s *Scheduler) plan(now time.Time) (arm bool, until time.Time) {
	if s.deps.Rules.IsEligible(rule.WeekdayOf(now)) {
		return true, rule.NextMidnight(now)
	}

	days := s.deps.Rules.DaysUntilNextEligible(now)
	until = rule.MidnightAfter(now, days)
	if !until.After(now) {
		until = rule.NextMidnight(now)
	}
	return false, until
}

// Run is the arming controller. It returns when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for ctx.Err() == nil {
		now := s.clock()
		arm, until := s.plan(now)

		if arm {
			logs.CtxInfo(ctx, "[controller] %s is eligible, poller armed until %s",
				rule.WeekdayOf(now), until.Format(time.DateTime))
			s.setArmed(true, until)
			prometheus.PollerActive.Set(1)

			s.poll(ctx, until)

			prometheus.PollerActive.Set(0)
			s.setArmed(false, time.Time{})
			continue
		}

		logs.CtxInfo(ctx, "[controller] %s is not eligible, sleeping until %s (%d days)",
			rule.WeekdayOf(now), until.Format(time.DateTime), s.deps.Rules.DaysUntilNextEligible(now))
		if !s.sleepUntil(ctx, until) {
			return
		}
	}
}

// sleepUntil waits in chunks of at most an hour and re-reads the wall clock
// after each, so suspend/resume or clock changes cannot oversleep a day.
func (s *Scheduler) sleepUntil(ctx context.Context, until time.Time) bool {
	for {
		remaining := until.Sub(s.clock())
		if remaining <= 0 {
			return ctx.Err() == nil
		}
		if remaining > maxSleepChunk {
			remaining = maxSleepChunk
		}
		if !s.sleep(ctx, remaining) {
			return false
		}
	}
}
