package ports

import (
	"context"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
	"github.com/djasnowski/myrefell-sub002/internal/domain/calendar"
)

type QueueRecordRepository interface {
	Create(ctx context.Context, rec action.Record) error
	GetByID(ctx context.Context, id string) (action.Record, error)
	// GetActiveByPlayer returns the player's active record or ErrNotFound.
	GetActiveByPlayer(ctx context.Context, playerID string) (action.Record, error)
	// GetActiveByPlayerForUpdate is the same lookup holding a row-level
	// exclusive lock for the rest of the surrounding transaction. Closes the
	// check-then-insert race on Start.
	GetActiveByPlayerForUpdate(ctx context.Context, playerID string) (action.Record, error)
	// GetLatestVisibleByPlayer returns the newest non-dismissed record,
	// active or terminal, or ErrNotFound.
	GetLatestVisibleByPlayer(ctx context.Context, playerID string) (action.Record, error)
	Update(ctx context.Context, rec action.Record) error
	ListStaleActive(ctx context.Context, olderThan time.Time) ([]action.Record, error)
}

type WorldClockRepository interface {
	// Get loads the clock singleton; ok=false when the row does not exist yet.
	Get(ctx context.Context) (clk calendar.Clock, ok bool, err error)
	// GetForUpdate locks the singleton row for the surrounding transaction so
	// concurrent tick triggers serialize instead of double-advancing.
	GetForUpdate(ctx context.Context) (clk calendar.Clock, ok bool, err error)
	Save(ctx context.Context, clk calendar.Clock) error
}
