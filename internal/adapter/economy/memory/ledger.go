package memory

import (
	"context"
	"sync"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
)

// Ledger is the in-memory inventory/gold collaborator. Capacity caps the
// number of distinct item stacks a player can hold; 0 means unbounded.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	items    map[string]map[string]int
	gold     map[string]int
}

func NewLedger(capacity int) *Ledger {
	return &Ledger{
		capacity: capacity,
		items:    make(map[string]map[string]int),
		gold:     make(map[string]int),
	}
}

func (l *Ledger) AddItem(_ context.Context, playerID, item string, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	held, ok := l.items[playerID]
	if !ok {
		held = make(map[string]int)
		l.items[playerID] = held
	}
	if l.capacity > 0 && held[item] == 0 && len(held) >= l.capacity {
		return ports.ErrInventoryFull
	}
	held[item] += quantity
	return nil
}

func (l *Ledger) RemoveItem(_ context.Context, playerID, item string, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	held := l.items[playerID]
	if held[item] < quantity {
		return ports.ErrNotFound
	}
	held[item] -= quantity
	if held[item] == 0 {
		delete(held, item)
	}
	return nil
}

func (l *Ledger) HasItem(_ context.Context, playerID, item string, quantity int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[playerID][item] >= quantity, nil
}

func (l *Ledger) CreditGold(_ context.Context, playerID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gold[playerID] += amount
	return nil
}

func (l *Ledger) DebitGold(_ context.Context, playerID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gold[playerID] < amount {
		return ports.ErrNotFound
	}
	l.gold[playerID] -= amount
	return nil
}

// Gold reads a player's balance for tests and status endpoints.
func (l *Ledger) Gold(playerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gold[playerID]
}
