package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestProviderSumsGrants(t *testing.T) {
	p := NewProvider(File{
		Base: []Grant{{Key: "gathering_yield", Amount: 5}},
		Players: map[string][]Grant{
			"player-1": {
				{Key: "gathering_yield", Amount: 10},
				{Key: "gathering_yield", Amount: 15},
				{Key: "combat_power", Amount: 3},
			},
		},
	})

	got, err := p.Effect(context.Background(), "player-1", "gathering_yield")
	if err != nil {
		t.Fatalf("effect error: %v", err)
	}
	if got != 30 {
		t.Fatalf("grants must stack additively: want 30, got %d", got)
	}

	got, _ = p.Effect(context.Background(), "player-2", "gathering_yield")
	if got != 5 {
		t.Fatalf("player without grants gets only the base: want 5, got %d", got)
	}

	got, _ = p.Effect(context.Background(), "player-1", "travel_speed")
	if got != 0 {
		t.Fatalf("ungranted key must be 0, got %d", got)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "effects.yaml")
	content := []byte(`
base:
  - key: gathering_yield
    amount: 5
players:
  player-1:
    - key: crafting_cooldown
      amount: 20
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write effects: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if got, _ := p.Effect(context.Background(), "player-1", "crafting_cooldown"); got != 20 {
		t.Fatalf("want 20, got %d", got)
	}
}
