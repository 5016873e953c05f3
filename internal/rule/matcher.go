package rule

import (
	"time"
)

// DueRules returns the enabled rules whose weekday, hour and minute match
// now. Seconds are ignored, so a rule is due for its whole minute; the
// ledger suppresses repeats inside that window.
func (rs *RuleSet) DueRules(now time.Time) []Rule {
	var due []Rule
	for _, r := range rs.RulesFor(WeekdayOf(now), now.Hour(), now.Minute()) {
		if r.Enabled {
			due = append(due, r)
		}
	}
	return due
}
