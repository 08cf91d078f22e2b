package memory

import (
	"context"

	"github.com/djasnowski/myrefell-sub002/internal/domain/calendar"
)

type WorldClockRepo struct {
	store *Store
}

func NewWorldClockRepo(store *Store) WorldClockRepo {
	return WorldClockRepo{store: store}
}

func (r WorldClockRepo) Get(_ context.Context) (calendar.Clock, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return cloneClock(r.store.clock), r.store.hasClock, nil
}

func (r WorldClockRepo) GetForUpdate(ctx context.Context) (calendar.Clock, bool, error) {
	return r.Get(ctx)
}

func (r WorldClockRepo) Save(_ context.Context, clk calendar.Clock) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.clock = cloneClock(clk)
	r.store.hasClock = true
	return nil
}

func cloneClock(clk calendar.Clock) calendar.Clock {
	out := clk
	if clk.LastTickAt != nil {
		at := *clk.LastTickAt
		out.LastTickAt = &at
	}
	return out
}
