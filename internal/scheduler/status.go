package scheduler

import (
	"context"
	"time"

	"github.com/tgifai/thursday/internal/dispatch"
	"github.com/tgifai/thursday/internal/ledger"
	"github.com/tgifai/thursday/internal/lock"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/rule"
)

type RuleStatus struct {
	ID       string     `json:"id"`
	Weekday  string     `json:"weekday"`
	Clock    string     `json:"clock"`
	Enabled  bool       `json:"enabled"`
	Prompt   string     `json:"prompt"`
	NextFire *time.Time `json:"next_fire,omitempty"`
	// FiredToday is set when today's slot for the rule is in the ledger.
	FiredToday bool `json:"fired_today"`
}

// Snapshot is a point-in-time view of the scheduler for `thursday status`
// and GET /status.
type Snapshot struct {
	Now                   time.Time         `json:"now"`
	Timezone              string            `json:"timezone"`
	Today                 string            `json:"today"`
	TodayEligible         bool              `json:"today_eligible"`
	EligibleDays          []string          `json:"eligible_days"`
	DaysUntilNextEligible int               `json:"days_until_next_eligible"`
	Armed                 bool              `json:"armed"`
	ArmedUntil            *time.Time        `json:"armed_until,omitempty"`
	Recipients            []string          `json:"recipients"`
	Image                 string            `json:"image"`
	Rules                 []RuleStatus      `json:"rules"`
	Custom                RuleStatus        `json:"custom"`
	LockHolder            *lock.Record      `json:"lock_holder,omitempty"`
	FiredSlots            []string          `json:"fired_slots"`
	Recent                []dispatch.Report `json:"recent"`
	ConfigHash            string            `json:"config_hash,omitempty"`
}

// Status collects a Snapshot. Lock and journal read failures are logged and
// leave their fields empty.
func (s *Scheduler) Status(ctx context.Context) Snapshot {
	now := s.clock()
	rs := s.deps.Rules

	if err := s.deps.Ledger.Reload(); err != nil {
		logs.CtxWarn(ctx, "[status] reload ledger: %v", err)
	}

	snap := Snapshot{
		Now:                   now,
		Timezone:              s.deps.Location.String(),
		Today:                 rule.WeekdayOf(now).String(),
		TodayEligible:         rs.IsEligible(rule.WeekdayOf(now)),
		DaysUntilNextEligible: rs.DaysUntilNextEligible(now),
		Recipients:            append([]string{}, s.deps.Recipients...),
		Image:                 dispatch.ImageStatus(s.deps.ImagePath),
		ConfigHash:            s.deps.ConfigHash,
		FiredSlots:            []string{},
	}
	for _, w := range rs.SortedEligibleDays() {
		snap.EligibleDays = append(snap.EligibleDays, w.String())
	}

	s.mu.Lock()
	if s.armed {
		till := s.armedTill
		snap.Armed, snap.ArmedUntil = true, &till
	}
	s.mu.Unlock()

	for _, key := range s.deps.Ledger.Entries() {
		if key.OnDate(now) {
			snap.FiredSlots = append(snap.FiredSlots, key.String())
		}
	}

	for _, r := range rs.Rules() {
		st := s.ruleStatus(ctx, r, now)
		if r.IsCustom() {
			snap.Custom = st
		}
		snap.Rules = append(snap.Rules, st)
	}

	if rec, held, err := s.deps.Locker.Holder(ctx); err != nil {
		logs.CtxWarn(ctx, "[status] read lock holder: %v", err)
	} else if held {
		snap.LockHolder = &rec
	}

	if s.deps.Journal != nil {
		recent, err := s.deps.Journal.Recent(recentReports)
		if err != nil {
			logs.CtxWarn(ctx, "[status] read journal: %v", err)
		}
		snap.Recent = recent
	}
	return snap
}

func (s *Scheduler) ruleStatus(ctx context.Context, r rule.Rule, now time.Time) RuleStatus {
	st := RuleStatus{
		ID:      r.ID,
		Weekday: r.Weekday.String(),
		Clock:   r.Clock(),
		Enabled: s.deps.Rules.IsEnabled(r),
		Prompt:  r.Prompt,
	}
	if r.Weekday == rule.WeekdayOf(now) {
		st.FiredToday = s.deps.Ledger.HasFired(keyOn(now, r))
	}
	if st.Enabled {
		next, err := s.deps.Rules.NextFire(r, now)
		if err != nil {
			logs.CtxWarn(ctx, "[status] next fire of %s: %v", r.ID, err)
		} else {
			st.NextFire = &next
		}
	}
	return st
}

// keyOn is r's slot key on day's date.
func keyOn(day time.Time, r rule.Rule) ledger.SlotKey {
	y, m, d := day.Date()
	return ledger.KeyFor(time.Date(y, m, d, r.Hour, r.Minute, 0, 0, day.Location()), r.ID)
}
