package calendar

// Modifiers are the season-driven multipliers applied to travel and gathering.
// Content values, not invariants; 1.0 means no effect.
type Modifiers struct {
	TravelSpeed    float64
	GatheringYield float64
}

var seasonModifiers = map[Season]Modifiers{
	SeasonSpring: {TravelSpeed: 1.0, GatheringYield: 1.1},
	SeasonSummer: {TravelSpeed: 1.1, GatheringYield: 1.25},
	SeasonAutumn: {TravelSpeed: 1.0, GatheringYield: 1.0},
	SeasonWinter: {TravelSpeed: 0.8, GatheringYield: 0.7},
}

func ModifiersFor(season Season) Modifiers {
	m, ok := seasonModifiers[season]
	if !ok {
		return Modifiers{TravelSpeed: 1.0, GatheringYield: 1.0}
	}
	return m
}
