package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// SlotKey identifies one firing of one rule: a calendar date, a minute of
// that day and the rule id. Scoping by rule keeps two rules that share a
// minute from suppressing each other.
type SlotKey struct {
	Date   string `json:"date"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	RuleID string `json:"rule_id"`
}

// KeyFor builds the key of ruleID firing in t's minute, using t's location
// for the calendar date.
func KeyFor(t time.Time, ruleID string) SlotKey {
	return SlotKey{
		Date:   t.Format(dateLayout),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		RuleID: ruleID,
	}
}

// String renders the durable form, e.g. 2026-01-15_18:00@evening.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s_%02d:%02d@%s", k.Date, k.Hour, k.Minute, k.RuleID)
}

// OnDate reports whether the key belongs to t's calendar date.
func (k SlotKey) OnDate(t time.Time) bool {
	return k.Date == t.Format(dateLayout)
}

func ParseSlotKey(s string) (SlotKey, error) {
	s = strings.TrimSpace(s)
	datePart, rest, ok := strings.Cut(s, "_")
	if !ok {
		return SlotKey{}, fmt.Errorf("invalid slot key %q: missing date separator", s)
	}
	if _, err := time.Parse(dateLayout, datePart); err != nil {
		return SlotKey{}, fmt.Errorf("invalid slot key %q: %w", s, err)
	}
	clock, ruleID, ok := strings.Cut(rest, "@")
	if !ok || ruleID == "" {
		return SlotKey{}, fmt.Errorf("invalid slot key %q: missing rule id", s)
	}

	if len(clock) != 5 || clock[2] != ':' {
		return SlotKey{}, fmt.Errorf("invalid slot key %q: bad clock %q", s, clock)
	}
	hour, err := strconv.Atoi(clock[:2])
	if err != nil {
		return SlotKey{}, fmt.Errorf("invalid slot key %q: %w", s, err)
	}
	minute, err := strconv.Atoi(clock[3:])
	if err != nil {
		return SlotKey{}, fmt.Errorf("invalid slot key %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return SlotKey{}, fmt.Errorf("invalid slot key %q: clock out of range", s)
	}

	return SlotKey{Date: datePart, Hour: hour, Minute: minute, RuleID: ruleID}, nil
}
