package rule

import (
	"fmt"
	"time"
)

// Weekday counts from Monday = 0 to Sunday = 6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// Number is the 1-based form used in config and user messages (Monday = 1).
func (w Weekday) Number() int {
	return int(w) + 1
}

// cronDow converts to the cron day-of-week field (Sunday = 0).
func (w Weekday) cronDow() int {
	return (int(w) + 1) % 7
}

func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// WeekdayFromNumber converts the 1-based config form, clamping to 1..7.
func WeekdayFromNumber(n int) Weekday {
	if n < 1 {
		n = 1
	}
	if n > 7 {
		n = 7
	}
	return Weekday(n - 1)
}

const (
	IDMorning = "morning"
	IDNoon    = "noon"
	IDEvening = "evening"
	IDNight   = "night"
	IDCustom  = "custom"
)

// FixedTimes are the four Thursday time points, in firing order.
var FixedTimes = [4]struct {
	ID     string
	Hour   int
	Minute int
}{
	{IDMorning, 10, 0},
	{IDNoon, 12, 0},
	{IDEvening, 18, 0},
	{IDNight, 20, 0},
}

type Rule struct {
	ID      string  `json:"id"`
	Weekday Weekday `json:"weekday"`
	Hour    int     `json:"hour"`
	Minute  int     `json:"minute"`
	Enabled bool    `json:"enabled"`
	Prompt  string  `json:"prompt"`
}

func (r Rule) IsCustom() bool {
	return r.ID == IDCustom
}

// Clock renders the time of day as HH:MM.
func (r Rule) Clock() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// Matches reports whether t falls inside the rule's minute, ignoring the
// enabled flag.
func (r Rule) Matches(t time.Time) bool {
	return WeekdayOf(t) == r.Weekday && t.Hour() == r.Hour && t.Minute() == r.Minute
}

func (r Rule) minuteOfDay() int {
	return r.Hour*60 + r.Minute
}

func (r Rule) String() string {
	return fmt.Sprintf("%s(%s %s)", r.ID, r.Weekday, r.Clock())
}
