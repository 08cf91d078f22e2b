package memory

import (
	"sync"

	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
	"github.com/djasnowski/myrefell-sub002/internal/domain/calendar"
)

// Store backs the in-memory adapters used by tests and DB-less local runs.
// mu guards the maps; txMu serializes whole transactions so a RunInTx body
// sees the same isolation the row locks give in postgres.
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	records  map[string]action.Record
	clock    calendar.Clock
	hasClock bool
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]action.Record),
	}
}

func (s *Store) SeedRecord(rec action.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
}

func (s *Store) SeedClock(clk calendar.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clk
	s.hasClock = true
}
