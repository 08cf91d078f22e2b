package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
)

var (
	ErrInvalidRequest = errors.New("invalid queue request")
	ErrAlreadyQueued  = errors.New("you already have an action queue running")
	ErrNoActiveQueue  = errors.New("no active action queue")
)

const (
	stopReasonCancelled = "Cancelled by player."
	stopReasonStale     = "Queue timed out (worker may have stopped)."
)

// Manager owns the queue-record lifecycle: start, cancel, dismiss and the
// stale-record reaper. The per-tick progression lives in Worker.
type Manager struct {
	TxManager ports.TxManager
	Records   ports.QueueRecordRepository
	Tasks     ports.TaskDispatcher
	Metrics   ports.QueueMetrics
	Tuning    action.Tuning
	Now       func() time.Time
}

type StartRequest struct {
	PlayerID string
	Action   action.Type
	Params   map[string]any
	Total    int
}

// Start creates the player's queue record and hands it to the worker lane.
// The existence check and the insert run in one transaction with the active
// row locked, so two racing starts cannot both pass the check; the second one
// either sees the row or blocks until the first commit makes it visible.
func (m Manager) Start(ctx context.Context, req StartRequest) (action.Record, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" || req.Total < 1 {
		return action.Record{}, ErrInvalidRequest
	}
	if _, ok := m.Tuning.For(req.Action); !ok {
		return action.Record{}, ErrInvalidRequest
	}

	nowFn := m.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	var created action.Record
	err := m.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := m.Records.GetActiveByPlayerForUpdate(txCtx, req.PlayerID)
		if err == nil {
			return ErrAlreadyQueued
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return err
		}

		now := nowFn()
		created = action.Record{
			ID:        uuid.NewString(),
			PlayerID:  req.PlayerID,
			Action:    req.Action,
			Params:    req.Params,
			Status:    action.StatusActive,
			Total:     req.Total,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return m.Records.Create(txCtx, created)
	})
	if err != nil {
		return action.Record{}, err
	}

	if m.Tasks != nil {
		// Fire-and-forget: if the dispatch is lost the record sits active
		// with no progress and the reaper fails it after the stale window.
		_ = m.Tasks.Enqueue(ctx, ports.LaneQueue, ports.Task{
			Kind:    ports.TaskKindRunQueue,
			Payload: map[string]any{"queue_id": created.ID},
		})
	}
	if m.Metrics != nil {
		m.Metrics.RecordStarted(created.Action)
	}
	return created, nil
}

// Cancel flips the player's active record to cancelled. No lock: the write is
// owner-scoped and the worker observes the status at its next tick boundary.
func (m Manager) Cancel(ctx context.Context, playerID string) error {
	rec, err := m.Records.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrNoActiveQueue
		}
		return err
	}

	nowFn := m.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	rec.Status = action.StatusCancelled
	rec.StopReason = stopReasonCancelled
	rec.UpdatedAt = nowFn()
	if err := m.Records.Update(ctx, rec); err != nil {
		return err
	}
	if m.Metrics != nil {
		m.Metrics.RecordFinished(action.StatusCancelled)
	}
	return nil
}

// GetActive returns the player's running record, or ErrNoActiveQueue.
func (m Manager) GetActive(ctx context.Context, playerID string) (action.Record, error) {
	rec, err := m.Records.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return action.Record{}, ErrNoActiveQueue
		}
		return action.Record{}, err
	}
	return rec, nil
}

// GetLatestVisible returns the newest record not hidden by dismissal, active
// or terminal, so the UI can show "your queue just finished" notices.
func (m Manager) GetLatestVisible(ctx context.Context, playerID string) (action.Record, error) {
	return m.Records.GetLatestVisibleByPlayer(ctx, playerID)
}

// Dismiss hides a finished record from queue listings. Active records, other
// players' records and already-dismissed records all answer ErrNotFound so
// the caller learns nothing about queues it cannot touch.
func (m Manager) Dismiss(ctx context.Context, playerID, queueID string) error {
	rec, err := m.Records.GetByID(ctx, queueID)
	if err != nil {
		return err
	}
	if rec.PlayerID != playerID || !rec.Status.Terminal() || rec.DismissedAt != nil {
		return ports.ErrNotFound
	}

	nowFn := m.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()
	rec.DismissedAt = &now
	rec.UpdatedAt = now
	return m.Records.Update(ctx, rec)
}

// ReapStale fails every active record whose worker has written no progress
// for the staleness window. Runs on a fixed interval; this is the only
// failure detection for crashed workers.
func (m Manager) ReapStale(ctx context.Context) (int, error) {
	nowFn := m.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	count := 0
	err := m.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		now := nowFn()
		stale, err := m.Records.ListStaleActive(txCtx, now.Add(-action.StaleAfter))
		if err != nil {
			return err
		}
		for _, rec := range stale {
			rec.Status = action.StatusFailed
			rec.StopReason = stopReasonStale
			rec.UpdatedAt = now
			if err := m.Records.Update(txCtx, rec); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if m.Metrics != nil && count > 0 {
		m.Metrics.RecordReaped(count)
	}
	return count, nil
}
