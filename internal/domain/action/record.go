package action

import "time"

// Type tags what a queued action does; the worker interprets Params per type.
type Type string

const (
	TypeGathering Type = "gathering"
	TypeCrafting  Type = "crafting"
	TypeCombat    Type = "combat"
	TypeTravel    Type = "travel"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a record in this status accepts no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// StaleAfter is how long an active record may go without a progress write
// before the reaper treats its worker as dead.
const StaleAfter = 5 * time.Minute

// Record is one action-queue run. Created active, driven forward one tick at a
// time by the worker, and finished exactly once into a terminal status.
// Terminal records are never deleted; DismissedAt hides them from the UI.
type Record struct {
	ID            string
	PlayerID      string
	Action        Type
	Params        map[string]any
	Status        Status
	Total         int
	Completed     int
	TotalXP       int
	TotalQuantity int
	StopReason    string
	DismissedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Visible reports whether the record should still surface in queue listings.
func (r Record) Visible() bool {
	return r.DismissedAt == nil
}

// Stale reports whether an active record has gone quiet long enough to reap.
func (r Record) Stale(now time.Time) bool {
	return r.Status == StatusActive && now.Sub(r.UpdatedAt) >= StaleAfter
}

// StringParam reads an optional string out of the opaque params payload.
func (r Record) StringParam(key string) string {
	if r.Params == nil {
		return ""
	}
	s, _ := r.Params[key].(string)
	return s
}
