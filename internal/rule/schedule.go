package rule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser is a standard 5-field cron expression parser (minute hour dom month dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CronSpec renders the rule as a weekly cron expression.
func (r Rule) CronSpec() string {
	return fmt.Sprintf("%d %d * * %d", r.Minute, r.Hour, r.Weekday.cronDow())
}

// NextFire returns the start of the rule's next minute at or after now, in
// now's location. The current minute counts when it matches.
func (rs *RuleSet) NextFire(r Rule, now time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(r.CronSpec())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", r.CronSpec(), err)
	}
	return sched.Next(now.Truncate(time.Minute).Add(-time.Second)), nil
}

// NextMidnight returns the start of the calendar day after now's, in now's
// location.
func NextMidnight(now time.Time) time.Time {
	return MidnightAfter(now, 1)
}

// MidnightAfter returns the start of the calendar day days days after now's
// date. Where DST begins at 00:00 the day starts at the transition instead.
func MidnightAfter(now time.Time, days int) time.Time {
	if days < 0 {
		days = 0
	}
	y, m, d := now.Date()
	return startOfDay(time.Date(y, m, d+days, 12, 0, 0, 0, now.Location()))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	if my, mm, md := midnight.Date(); my != y || mm != m || md != d {
		// 00:00 was skipped; time.Date resolved it into the previous day
		_, end := midnight.ZoneBounds()
		if !end.IsZero() {
			return end
		}
	}
	return midnight
}
