package rule

import (
	"fmt"
	"sort"

	"github.com/tgifai/thursday/internal/config"
)

// RuleSet holds the four fixed Thursday rules and the custom rule. It is
// immutable after construction and safe for concurrent reads.
type RuleSet struct {
	fixed  [4]Rule
	custom Rule
}

func NewRuleSet(fixed [4]Rule, custom Rule) (*RuleSet, error) {
	for _, r := range append(fixed[:], custom) {
		if err := validate(r); err != nil {
			return nil, err
		}
	}
	return &RuleSet{fixed: fixed, custom: custom}, nil
}

// FromConfig builds the rule set from the schedule section of a validated
// config.
func FromConfig(s config.ScheduleConfig) (*RuleSet, error) {
	slots := [4]config.SlotConfig{s.Morning, s.Noon, s.Evening, s.Night}

	var fixed [4]Rule
	for i, ft := range FixedTimes {
		fixed[i] = Rule{
			ID:      ft.ID,
			Weekday: Thursday,
			Hour:    ft.Hour,
			Minute:  ft.Minute,
			Enabled: slots[i].IsEnabled(),
			Prompt:  slots[i].Prompt,
		}
	}

	if s.Custom.Hour == nil || s.Custom.Minute == nil {
		return nil, fmt.Errorf("custom rule time is not set, validate the config first")
	}
	custom := Rule{
		ID:      IDCustom,
		Weekday: WeekdayFromNumber(s.Custom.Weekday),
		Hour:    *s.Custom.Hour,
		Minute:  *s.Custom.Minute,
		Enabled: s.Custom.IsEnabled(),
		Prompt:  s.Custom.Prompt,
	}
	return NewRuleSet(fixed, custom)
}

func validate(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if !r.Weekday.Valid() {
		return fmt.Errorf("rule %s: weekday %d out of range", r.ID, r.Weekday)
	}
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("rule %s: invalid time %02d:%02d", r.ID, r.Hour, r.Minute)
	}
	return nil
}

// Rules returns fixed rules first, then the custom rule.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, 0, len(rs.fixed)+1)
	out = append(out, rs.fixed[:]...)
	return append(out, rs.custom)
}

func (rs *RuleSet) Get(id string) (Rule, bool) {
	for _, r := range rs.Rules() {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

func (rs *RuleSet) Custom() Rule {
	return rs.custom
}

func (rs *RuleSet) IsEnabled(r Rule) bool {
	one, ok := rs.Get(r.ID)
	return ok && one.Enabled
}

// EligibleDays is {Thursday} plus the custom rule's weekday. Enable flags do
// not narrow it; a day with only disabled rules arms a poller that finds
// nothing due.
func (rs *RuleSet) EligibleDays() map[Weekday]struct{} {
	return map[Weekday]struct{}{
		Thursday:          {},
		rs.custom.Weekday: {},
	}
}

// SortedEligibleDays is EligibleDays in weekday order.
func (rs *RuleSet) SortedEligibleDays() []Weekday {
	days := rs.EligibleDays()
	out := make([]Weekday, 0, len(days))
	for d := range days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (rs *RuleSet) IsEligible(w Weekday) bool {
	_, ok := rs.EligibleDays()[w]
	return ok
}

// RulesFor returns every rule at the given weekday and time regardless of
// its enabled flag: none, one, or a fixed and the custom rule together.
func (rs *RuleSet) RulesFor(w Weekday, hour, minute int) []Rule {
	var out []Rule
	for _, r := range rs.Rules() {
		if r.Weekday == w && r.Hour == hour && r.Minute == minute {
			out = append(out, r)
		}
	}
	return out
}
