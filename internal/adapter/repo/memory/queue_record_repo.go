package memory

import (
	"context"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
)

type QueueRecordRepo struct {
	store *Store
}

func NewQueueRecordRepo(store *Store) QueueRecordRepo {
	return QueueRecordRepo{store: store}
}

func (r QueueRecordRepo) Create(_ context.Context, rec action.Record) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.records[rec.ID]; exists {
		return ports.ErrConflict
	}
	if rec.Status == action.StatusActive {
		for _, existing := range r.store.records {
			if existing.PlayerID == rec.PlayerID && existing.Status == action.StatusActive {
				return ports.ErrConflict
			}
		}
	}
	r.store.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (r QueueRecordRepo) GetByID(_ context.Context, id string) (action.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.records[id]
	if !ok {
		return action.Record{}, ports.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r QueueRecordRepo) GetActiveByPlayer(_ context.Context, playerID string) (action.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.records {
		if rec.PlayerID == playerID && rec.Status == action.StatusActive {
			return cloneRecord(rec), nil
		}
	}
	return action.Record{}, ports.ErrNotFound
}

func (r QueueRecordRepo) GetActiveByPlayerForUpdate(ctx context.Context, playerID string) (action.Record, error) {
	// the tx manager already holds the store-wide transaction lock
	return r.GetActiveByPlayer(ctx, playerID)
}

func (r QueueRecordRepo) GetLatestVisibleByPlayer(_ context.Context, playerID string) (action.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var latest *action.Record
	for id := range r.store.records {
		rec := r.store.records[id]
		if rec.PlayerID != playerID || !rec.Visible() {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			copied := rec
			latest = &copied
		}
	}
	if latest == nil {
		return action.Record{}, ports.ErrNotFound
	}
	return cloneRecord(*latest), nil
}

func (r QueueRecordRepo) Update(_ context.Context, rec action.Record) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.records[rec.ID]; !ok {
		return ports.ErrNotFound
	}
	r.store.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (r QueueRecordRepo) ListStaleActive(_ context.Context, olderThan time.Time) ([]action.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]action.Record, 0)
	for _, rec := range r.store.records {
		if rec.Status == action.StatusActive && rec.UpdatedAt.Before(olderThan) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func cloneRecord(rec action.Record) action.Record {
	out := rec
	if rec.Params != nil {
		out.Params = make(map[string]any, len(rec.Params))
		for k, v := range rec.Params {
			out.Params[k] = v
		}
	}
	if rec.DismissedAt != nil {
		at := *rec.DismissedAt
		out.DismissedAt = &at
	}
	return out
}
