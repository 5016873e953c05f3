package rule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgifai/thursday/internal/config"
)

// 2026-01-12 is a Monday; 2026-01-15 a Thursday.
func at(day, hour, minute, sec int) time.Time {
	return time.Date(2026, 1, day, hour, minute, sec, 0, time.UTC)
}

func newRuleSet(t *testing.T, custom Rule) *RuleSet {
	t.Helper()
	var fixed [4]Rule
	for i, ft := range FixedTimes {
		fixed[i] = Rule{ID: ft.ID, Weekday: Thursday, Hour: ft.Hour, Minute: ft.Minute, Enabled: true, Prompt: ft.ID}
	}
	rs, err := NewRuleSet(fixed, custom)
	require.NoError(t, err)
	return rs
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Monday, WeekdayOf(at(12, 0, 0, 0)))
	assert.Equal(t, Thursday, WeekdayOf(at(15, 0, 0, 0)))
	assert.Equal(t, Sunday, WeekdayOf(at(18, 0, 0, 0)))
	assert.Equal(t, Thursday, WeekdayFromNumber(4))
	assert.Equal(t, Sunday, WeekdayFromNumber(9))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	off := false
	cfg.Schedule.Noon.Enabled = &off
	cfg.Schedule.Custom.Weekday = 6
	require.NoError(t, cfg.Validate())

	rs, err := FromConfig(cfg.Schedule)
	require.NoError(t, err)

	rules := rs.Rules()
	require.Len(t, rules, 5)
	assert.Equal(t, IDMorning, rules[0].ID)
	assert.Equal(t, IDCustom, rules[4].ID)

	noon, ok := rs.Get(IDNoon)
	require.True(t, ok)
	assert.False(t, rs.IsEnabled(noon))

	custom := rs.Custom()
	assert.Equal(t, Saturday, custom.Weekday)
	assert.Equal(t, "18:30", custom.Clock())
	assert.Equal(t, []Weekday{Thursday, Saturday}, rs.SortedEligibleDays())
}

func TestDueRules(t *testing.T) {
	rs := newRuleSet(t, Rule{ID: IDCustom, Weekday: Saturday, Hour: 9, Minute: 15, Enabled: true})

	due := rs.DueRules(at(15, 10, 0, 42))
	require.Len(t, due, 1)
	assert.Equal(t, IDMorning, due[0].ID)

	assert.Empty(t, rs.DueRules(at(15, 10, 1, 0)))
	assert.Empty(t, rs.DueRules(at(12, 10, 0, 0)))

	due = rs.DueRules(at(17, 9, 15, 59))
	require.Len(t, due, 1)
	assert.Equal(t, IDCustom, due[0].ID)
}

func TestDueRules_DisabledRuleIsNotDue(t *testing.T) {
	var fixed [4]Rule
	for i, ft := range FixedTimes {
		fixed[i] = Rule{ID: ft.ID, Weekday: Thursday, Hour: ft.Hour, Minute: ft.Minute, Enabled: ft.ID != IDNoon}
	}
	rs, err := NewRuleSet(fixed, Rule{ID: IDCustom, Weekday: Friday, Hour: 1, Minute: 0})
	require.NoError(t, err)

	assert.Empty(t, rs.DueRules(at(15, 12, 0, 0)))
	assert.Len(t, rs.RulesFor(Thursday, 12, 0), 1)
}

func TestDueRules_CoincidingRules(t *testing.T) {
	rs := newRuleSet(t, Rule{ID: IDCustom, Weekday: Thursday, Hour: 18, Minute: 0, Enabled: true})

	due := rs.DueRules(at(15, 18, 0, 5))
	require.Len(t, due, 2)
	assert.Equal(t, IDEvening, due[0].ID)
	assert.Equal(t, IDCustom, due[1].ID)
}

func TestDaysUntil(t *testing.T) {
	rs := newRuleSet(t, Rule{ID: IDCustom, Weekday: Saturday, Hour: 18, Minute: 30, Enabled: true})

	monday := at(12, 9, 0, 0)
	assert.Equal(t, 3, rs.DaysUntil(monday, Thursday))
	assert.Equal(t, 5, rs.DaysUntil(monday, Saturday))
	assert.Equal(t, 3, rs.DaysUntilNextEligible(monday))

	friday := at(16, 9, 0, 0)
	assert.Equal(t, 1, rs.DaysUntilNextEligible(friday))
}

func TestDaysUntil_TodayPastRollsToSeven(t *testing.T) {
	rs := newRuleSet(t, Rule{ID: IDCustom, Weekday: Saturday, Hour: 18, Minute: 30, Enabled: true})

	assert.Equal(t, 0, rs.DaysUntil(at(15, 19, 0, 0), Thursday), "night rule still ahead")
	assert.Equal(t, 0, rs.DaysUntil(at(15, 20, 0, 30), Thursday), "current minute still counts")
	assert.Equal(t, 7, rs.DaysUntil(at(15, 20, 1, 0), Thursday))
	assert.Equal(t, 2, rs.DaysUntilNextEligible(at(15, 21, 0, 0)))
}

func TestNextFire(t *testing.T) {
	rs := newRuleSet(t, Rule{ID: IDCustom, Weekday: Sunday, Hour: 7, Minute: 5, Enabled: true})
	evening, _ := rs.Get(IDEvening)

	next, err := rs.NextFire(evening, at(12, 9, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, at(15, 18, 0, 0), next)

	next, err = rs.NextFire(evening, at(15, 18, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, at(15, 18, 0, 0), next)

	next, err = rs.NextFire(evening, at(15, 18, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, at(22, 18, 0, 0), next)

	next, err = rs.NextFire(rs.Custom(), at(15, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, at(18, 7, 5, 0), next)
}

func TestMidnight(t *testing.T) {
	assert.Equal(t, at(13, 0, 0, 0), NextMidnight(at(12, 23, 59, 59)))
	assert.Equal(t, at(13, 0, 0, 0), NextMidnight(at(12, 0, 0, 0)))
	assert.Equal(t, at(15, 0, 0, 0), MidnightAfter(at(12, 9, 30, 0), 3))
	assert.Equal(t, at(12, 0, 0, 0), MidnightAfter(at(12, 9, 30, 0), 0))
}

func TestMidnight_DSTStartsAtMidnight(t *testing.T) {
	// Chile moves 00:00 to 01:00 on 2026-09-06, a Sunday
	santiago, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	saturday := time.Date(2026, 9, 5, 10, 0, 0, 0, santiago)

	next := NextMidnight(saturday)
	assert.Equal(t, Sunday, WeekdayOf(next))
	assert.True(t, next.Equal(time.Date(2026, 9, 6, 4, 0, 0, 0, time.UTC)), "got %s", next)
	assert.Equal(t, 1, next.Hour())

	assert.True(t, next.Equal(MidnightAfter(saturday, 1)))
	assert.Equal(t, Monday, WeekdayOf(MidnightAfter(saturday, 2)))
	assert.Equal(t, 0, MidnightAfter(saturday, 2).Hour())
}
