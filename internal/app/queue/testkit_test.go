package queue

import (
	"context"
	"sort"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubRecordRepo struct {
	byID map[string]action.Record
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{byID: map[string]action.Record{}}
}

func (r *stubRecordRepo) Create(_ context.Context, rec action.Record) error {
	if _, exists := r.byID[rec.ID]; exists {
		return ports.ErrConflict
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *stubRecordRepo) GetByID(_ context.Context, id string) (action.Record, error) {
	rec, ok := r.byID[id]
	if !ok {
		return action.Record{}, ports.ErrNotFound
	}
	return rec, nil
}

func (r *stubRecordRepo) GetActiveByPlayer(_ context.Context, playerID string) (action.Record, error) {
	for _, rec := range r.byID {
		if rec.PlayerID == playerID && rec.Status == action.StatusActive {
			return rec, nil
		}
	}
	return action.Record{}, ports.ErrNotFound
}

func (r *stubRecordRepo) GetActiveByPlayerForUpdate(ctx context.Context, playerID string) (action.Record, error) {
	return r.GetActiveByPlayer(ctx, playerID)
}

func (r *stubRecordRepo) GetLatestVisibleByPlayer(_ context.Context, playerID string) (action.Record, error) {
	visible := make([]action.Record, 0)
	for _, rec := range r.byID {
		if rec.PlayerID == playerID && rec.Visible() {
			visible = append(visible, rec)
		}
	}
	if len(visible) == 0 {
		return action.Record{}, ports.ErrNotFound
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible[0], nil
}

func (r *stubRecordRepo) Update(_ context.Context, rec action.Record) error {
	if _, ok := r.byID[rec.ID]; !ok {
		return ports.ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *stubRecordRepo) ListStaleActive(_ context.Context, olderThan time.Time) ([]action.Record, error) {
	out := make([]action.Record, 0)
	for _, rec := range r.byID {
		if rec.Status == action.StatusActive && rec.UpdatedAt.Before(olderThan) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type stubDispatcher struct {
	tasks []ports.Task
	lanes []string
}

func (d *stubDispatcher) Enqueue(_ context.Context, lane string, task ports.Task) error {
	d.tasks = append(d.tasks, task)
	d.lanes = append(d.lanes, lane)
	return nil
}

type stubEffects struct {
	byKey map[string]int
}

func (e stubEffects) Effect(_ context.Context, _, key string) (int, error) {
	return e.byKey[key], nil
}

type stubEconomy struct {
	items    map[string]int
	gold     int
	addErr   error
	addCalls int
}

func newStubEconomy() *stubEconomy {
	return &stubEconomy{items: map[string]int{}}
}

func (e *stubEconomy) AddItem(_ context.Context, _ string, item string, quantity int) error {
	e.addCalls++
	if e.addErr != nil {
		return e.addErr
	}
	e.items[item] += quantity
	return nil
}

func (e *stubEconomy) RemoveItem(_ context.Context, _ string, item string, quantity int) error {
	if e.items[item] < quantity {
		return ports.ErrNotFound
	}
	e.items[item] -= quantity
	return nil
}

func (e *stubEconomy) HasItem(_ context.Context, _ string, item string, quantity int) (bool, error) {
	return e.items[item] >= quantity, nil
}

func (e *stubEconomy) CreditGold(_ context.Context, _ string, amount int) error {
	e.gold += amount
	return nil
}

func (e *stubEconomy) DebitGold(_ context.Context, _ string, amount int) error {
	if e.gold < amount {
		return ports.ErrNotFound
	}
	e.gold -= amount
	return nil
}

type stubMetrics struct {
	started  int
	ticks    int
	finished map[action.Status]int
	reaped   int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{finished: map[action.Status]int{}}
}

func (m *stubMetrics) RecordStarted(action.Type) { m.started++ }
func (m *stubMetrics) RecordTick(action.Type)    { m.ticks++ }
func (m *stubMetrics) RecordFinished(status action.Status) {
	m.finished[status]++
}
func (m *stubMetrics) RecordReaped(count int) { m.reaped += count }

func noSleep(context.Context, time.Duration) error { return nil }
