package memory

import (
	"context"
	"fmt"
	"sync"
)

// NPC is one world inhabitant tracked by the population jobs.
type NPC struct {
	ID      string
	Age     int
	MaxAge  int
	Fertile bool
	Starved bool
}

// Roster is the in-memory NPC population behind the calendar fan-out jobs.
// Capacity clamps reproduction so a long-running world cannot grow unbounded.
type Roster struct {
	mu       sync.Mutex
	npcs     map[string]NPC
	food     int
	capacity int
	nextID   int
}

func NewRoster(capacity, food int, seed []NPC) *Roster {
	r := &Roster{
		npcs:     make(map[string]NPC),
		food:     food,
		capacity: capacity,
	}
	for _, npc := range seed {
		r.npcs[npc.ID] = npc
	}
	return r
}

// AgeNPCs adds one year to everyone and retires those past max age.
func (r *Roster) AgeNPCs(_ context.Context) (aged, died int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, npc := range r.npcs {
		npc.Age++
		aged++
		if npc.MaxAge > 0 && npc.Age > npc.MaxAge {
			delete(r.npcs, id)
			died++
			continue
		}
		r.npcs[id] = npc
	}
	return aged, died, nil
}

// BreedNPCs spawns one child per fertile pair, clamped by capacity.
func (r *Roster) BreedNPCs(_ context.Context) (born int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fertile := 0
	for _, npc := range r.npcs {
		if npc.Fertile && !npc.Starved {
			fertile++
		}
	}
	for pairs := fertile / 2; pairs > 0; pairs-- {
		if r.capacity > 0 && len(r.npcs) >= r.capacity {
			break
		}
		r.nextID++
		id := fmt.Sprintf("npc-%d", r.nextID)
		r.npcs[id] = NPC{ID: id, MaxAge: 60}
		born++
	}
	return born, nil
}

// ConsumeFood debits one unit per npc; whoever the store cannot feed starves.
// A starved npc recovers as soon as a later week has food for it.
func (r *Roster) ConsumeFood(_ context.Context) (consumed, starved int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, npc := range r.npcs {
		if r.food > 0 {
			r.food--
			consumed++
			npc.Starved = false
		} else {
			npc.Starved = true
			starved++
		}
		r.npcs[id] = npc
	}
	return consumed, starved, nil
}

// AddFood restocks the shared store (harvest deliveries, admin top-ups).
func (r *Roster) AddFood(amount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.food += amount
}

// Population reads the current headcount.
func (r *Roster) Population() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.npcs)
}
