package static

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Grant is one effect source: a blessing or belief bonus. Amounts for the
// same key stack additively.
type Grant struct {
	Key    string `yaml:"key"`
	Amount int    `yaml:"amount"`
}

// File is the on-disk shape: world-wide base grants plus per-player grants.
type File struct {
	Base    []Grant            `yaml:"base"`
	Players map[string][]Grant `yaml:"players"`
}

// Provider aggregates effect values from a static grant table. Content comes
// from a YAML file in production and a literal File in tests.
type Provider struct {
	base    map[string]int
	players map[string]map[string]int
}

func NewProvider(file File) Provider {
	p := Provider{
		base:    make(map[string]int),
		players: make(map[string]map[string]int),
	}
	for _, grant := range file.Base {
		p.base[grant.Key] += grant.Amount
	}
	for playerID, grants := range file.Players {
		byKey := make(map[string]int)
		for _, grant := range grants {
			byKey[grant.Key] += grant.Amount
		}
		p.players[playerID] = byKey
	}
	return p
}

func Load(path string) (Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Provider{}, err
	}
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Provider{}, fmt.Errorf("effects.yaml: %w", err)
	}
	return NewProvider(file), nil
}

// Effect sums the base grant and the player's own grants for the key.
func (p Provider) Effect(_ context.Context, playerID, key string) (int, error) {
	total := p.base[key]
	if byKey, ok := p.players[playerID]; ok {
		total += byKey[key]
	}
	return total, nil
}
