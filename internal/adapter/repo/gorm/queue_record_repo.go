package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/adapter/repo/gorm/model"
	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueueRecordRepo struct {
	db *gorm.DB
}

func NewQueueRecordRepo(db *gorm.DB) QueueRecordRepo {
	return QueueRecordRepo{db: db}
}

func (r QueueRecordRepo) Create(ctx context.Context, rec action.Record) error {
	m := toQueueModel(rec)
	if err := getDBFromCtx(ctx, r.db).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// the partial unique index on (player_id) WHERE status='active'
			// is the storage-level backstop behind the row lock
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r QueueRecordRepo) GetByID(ctx context.Context, id string) (action.Record, error) {
	var m model.QueueRecord
	err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.Record{}, ports.ErrNotFound
		}
		return action.Record{}, err
	}
	return fromQueueModel(m), nil
}

func (r QueueRecordRepo) GetActiveByPlayer(ctx context.Context, playerID string) (action.Record, error) {
	return r.getActive(getDBFromCtx(ctx, r.db), playerID)
}

func (r QueueRecordRepo) GetActiveByPlayerForUpdate(ctx context.Context, playerID string) (action.Record, error) {
	db := getDBFromCtx(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getActive(db, playerID)
}

func (r QueueRecordRepo) getActive(db *gorm.DB, playerID string) (action.Record, error) {
	var m model.QueueRecord
	err := db.
		Where("player_id = ? AND status = ?", playerID, string(action.StatusActive)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.Record{}, ports.ErrNotFound
		}
		return action.Record{}, err
	}
	return fromQueueModel(m), nil
}

func (r QueueRecordRepo) GetLatestVisibleByPlayer(ctx context.Context, playerID string) (action.Record, error) {
	var m model.QueueRecord
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND dismissed_at IS NULL", playerID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.Record{}, ports.ErrNotFound
		}
		return action.Record{}, err
	}
	return fromQueueModel(m), nil
}

func (r QueueRecordRepo) Update(ctx context.Context, rec action.Record) error {
	m := toQueueModel(rec)
	result := getDBFromCtx(ctx, r.db).
		Model(&model.QueueRecord{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"status":         m.Status,
			"completed":      m.Completed,
			"total_xp":       m.TotalXp,
			"total_quantity": m.TotalQuantity,
			"stop_reason":    m.StopReason,
			"dismissed_at":   m.DismissedAt,
			"updated_at":     m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r QueueRecordRepo) ListStaleActive(ctx context.Context, olderThan time.Time) ([]action.Record, error) {
	var rows []model.QueueRecord
	err := getDBFromCtx(ctx, r.db).
		Where("status = ? AND updated_at < ?", string(action.StatusActive), olderThan).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]action.Record, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromQueueModel(m))
	}
	return out, nil
}

func toQueueModel(rec action.Record) model.QueueRecord {
	var params []byte
	if rec.Params != nil {
		params, _ = json.Marshal(rec.Params)
	}
	var stopReason *string
	if rec.StopReason != "" {
		s := rec.StopReason
		stopReason = &s
	}
	return model.QueueRecord{
		ID:            rec.ID,
		PlayerID:      rec.PlayerID,
		Action:        string(rec.Action),
		Params:        params,
		Status:        string(rec.Status),
		Total:         int32(rec.Total),
		Completed:     int32(rec.Completed),
		TotalXp:       int32(rec.TotalXP),
		TotalQuantity: int32(rec.TotalQuantity),
		StopReason:    stopReason,
		DismissedAt:   rec.DismissedAt,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func fromQueueModel(m model.QueueRecord) action.Record {
	var params map[string]any
	if len(m.Params) > 0 {
		_ = json.Unmarshal(m.Params, &params)
	}
	stopReason := ""
	if m.StopReason != nil {
		stopReason = *m.StopReason
	}
	return action.Record{
		ID:            m.ID,
		PlayerID:      m.PlayerID,
		Action:        action.Type(m.Action),
		Params:        params,
		Status:        action.Status(m.Status),
		Total:         int(m.Total),
		Completed:     int(m.Completed),
		TotalXP:       int(m.TotalXp),
		TotalQuantity: int(m.TotalQuantity),
		StopReason:    stopReason,
		DismissedAt:   m.DismissedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
