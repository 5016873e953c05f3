package rule

import (
	"time"
)

// DaysUntil counts whole days from now's date to the next occurrence of w.
// When w is today it returns 0 while today still has an enabled rule at or
// after the current minute, and 7 once today's cycle is over.
func (rs *RuleSet) DaysUntil(now time.Time, w Weekday) int {
	today := WeekdayOf(now)
	days := (int(w) - int(today) + 7) % 7
	if days != 0 {
		return days
	}
	if rs.hasRemaining(now) {
		return 0
	}
	return 7
}

// DaysUntilNextEligible is the minimum DaysUntil over EligibleDays.
func (rs *RuleSet) DaysUntilNextEligible(now time.Time) int {
	best := 7
	for w := range rs.EligibleDays() {
		if d := rs.DaysUntil(now, w); d < best {
			best = d
		}
	}
	return best
}

func (rs *RuleSet) hasRemaining(now time.Time) bool {
	today := WeekdayOf(now)
	current := now.Hour()*60 + now.Minute()
	for _, r := range rs.Rules() {
		if r.Enabled && r.Weekday == today && r.minuteOfDay() >= current {
			return true
		}
	}
	return false
}
