package action

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type LootEntry struct {
	Item   string `yaml:"item"`
	Weight int    `yaml:"weight"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
}

type ItemAmount struct {
	Item   string `yaml:"item"`
	Amount int    `yaml:"amount"`
}

type TypeTuning struct {
	TickSeconds int          `yaml:"tick_seconds"`
	XPPerTick   int          `yaml:"xp_per_tick"`
	GoldPerTick int          `yaml:"gold_per_tick"`
	Inputs      []ItemAmount `yaml:"inputs"`
	Loot        []LootEntry  `yaml:"loot"`
}

func (t TypeTuning) TickInterval() time.Duration {
	return time.Duration(t.TickSeconds) * time.Second
}

type Tuning struct {
	Actions map[Type]TypeTuning `yaml:"actions"`
}

func (t Tuning) For(action Type) (TypeTuning, bool) {
	tt, ok := t.Actions[action]
	return tt, ok
}

// Validate rejects tables the queue cannot run safely: every action needs a
// positive tick interval, and the interval must stay well under the staleness
// threshold so per-tick updated_at touches keep long runs out of the reaper.
func (t Tuning) Validate() error {
	if len(t.Actions) == 0 {
		return fmt.Errorf("tuning: no actions defined")
	}
	for action, tt := range t.Actions {
		if tt.TickSeconds <= 0 {
			return fmt.Errorf("tuning: action %q has non-positive tick_seconds", action)
		}
		if tt.TickInterval() > StaleAfter/2 {
			return fmt.Errorf("tuning: action %q tick interval %s exceeds half the staleness window %s", action, tt.TickInterval(), StaleAfter)
		}
		for _, entry := range tt.Loot {
			if entry.Item == "" || entry.Weight <= 0 {
				return fmt.Errorf("tuning: action %q has a loot entry without item or weight", action)
			}
			if entry.Min < 0 || entry.Max < entry.Min {
				return fmt.Errorf("tuning: action %q loot %q has bad quantity range [%d,%d]", action, entry.Item, entry.Min, entry.Max)
			}
		}
		for _, input := range tt.Inputs {
			if input.Item == "" || input.Amount <= 0 {
				return fmt.Errorf("tuning: action %q has a bad input entry", action)
			}
		}
	}
	return nil
}

// LoadTuning reads action tables from a YAML file.
func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// DefaultTuning is the built-in table used when no tuning file is configured.
func DefaultTuning() Tuning {
	return Tuning{Actions: map[Type]TypeTuning{
		TypeGathering: {
			TickSeconds: 6,
			XPPerTick:   4,
			Loot: []LootEntry{
				{Item: "wood", Weight: 50, Min: 1, Max: 3},
				{Item: "herbs", Weight: 30, Min: 1, Max: 2},
				{Item: "wild_berries", Weight: 20, Min: 1, Max: 1},
			},
		},
		TypeCrafting: {
			TickSeconds: 10,
			XPPerTick:   6,
			Inputs:      []ItemAmount{{Item: "wood", Amount: 2}},
			Loot:        []LootEntry{{Item: "plank", Weight: 1, Min: 1, Max: 1}},
		},
		TypeCombat: {
			TickSeconds: 8,
			XPPerTick:   8,
			GoldPerTick: 2,
			Loot: []LootEntry{
				{Item: "rat_tail", Weight: 70, Min: 1, Max: 1},
				{Item: "rusty_dagger", Weight: 30, Min: 0, Max: 1},
			},
		},
		TypeTravel: {
			TickSeconds: 5,
			XPPerTick:   1,
		},
	}}
}
