package calendar

import "time"

type Season string

const (
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonAutumn Season = "Autumn"
	SeasonWinter Season = "Winter"
)

var seasonOrder = [...]Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

// WeeksPerSeason fixes the world year at 4x13 = 52 weeks.
const WeeksPerSeason = 13

// DefaultTickInterval is the real time between world-week advances.
const DefaultTickInterval = 24 * time.Hour

func ValidSeason(s Season) bool {
	for _, season := range seasonOrder {
		if season == s {
			return true
		}
	}
	return false
}

func seasonIndex(s Season) int {
	for i, season := range seasonOrder {
		if season == s {
			return i
		}
	}
	return 0
}

// Clock is the world-time singleton: one row for the life of the world.
type Clock struct {
	Year       int
	Season     Season
	Week       int
	LastTickAt *time.Time
}

// NewClock is the state of a freshly created world.
func NewClock() Clock {
	return Clock{Year: 1, Season: SeasonSpring, Week: 1}
}

// Valid reports whether the date fields are in range.
func (c Clock) Valid() bool {
	return c.Year >= 1 && ValidSeason(c.Season) && c.Week >= 1 && c.Week <= WeeksPerSeason
}

// Due reports whether enough real time has elapsed since the last tick.
// A clock that has never ticked is always due.
func (c Clock) Due(now time.Time, interval time.Duration) bool {
	if c.LastTickAt == nil {
		return true
	}
	return now.Sub(*c.LastTickAt) >= interval
}

type AdvanceResult struct {
	Clock         Clock
	SeasonChanged bool
	YearChanged   bool
}

// Advanced returns the clock moved forward one week, cascading the season
// rollover when the week wraps and the year when the season cycle wraps.
func (c Clock) Advanced(now time.Time) AdvanceResult {
	out := AdvanceResult{Clock: c}
	out.Clock.Week++
	if out.Clock.Week > WeeksPerSeason {
		out.Clock.Week = 1
		out.SeasonChanged = true
		next := (seasonIndex(c.Season) + 1) % len(seasonOrder)
		out.Clock.Season = seasonOrder[next]
		if next == 0 {
			out.Clock.Year++
			out.YearChanged = true
		}
	}
	out.Clock.LastTickAt = &now
	return out
}
