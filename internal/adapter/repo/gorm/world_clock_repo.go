package gormrepo

import (
	"context"
	"errors"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/adapter/repo/gorm/model"
	"github.com/djasnowski/myrefell-sub002/internal/domain/calendar"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// clockStateKey pins the singleton to one row.
const clockStateKey = "global"

type WorldClockRepo struct {
	db *gorm.DB
}

func NewWorldClockRepo(db *gorm.DB) WorldClockRepo {
	return WorldClockRepo{db: db}
}

func (r WorldClockRepo) Get(ctx context.Context) (calendar.Clock, bool, error) {
	return r.get(getDBFromCtx(ctx, r.db))
}

func (r WorldClockRepo) GetForUpdate(ctx context.Context) (calendar.Clock, bool, error) {
	db := getDBFromCtx(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.get(db)
}

func (r WorldClockRepo) get(db *gorm.DB) (calendar.Clock, bool, error) {
	var m model.WorldClock
	err := db.Where("state_key = ?", clockStateKey).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return calendar.Clock{}, false, nil
		}
		return calendar.Clock{}, false, err
	}
	return calendar.Clock{
		Year:       int(m.CurrentYear),
		Season:     calendar.Season(m.CurrentSeason),
		Week:       int(m.CurrentWeek),
		LastTickAt: m.LastTickAt,
	}, true, nil
}

func (r WorldClockRepo) Save(ctx context.Context, clk calendar.Clock) error {
	return getDBFromCtx(ctx, r.db).
		Where(&model.WorldClock{StateKey: clockStateKey}).
		Assign(model.WorldClock{
			CurrentYear:   int32(clk.Year),
			CurrentSeason: string(clk.Season),
			CurrentWeek:   int32(clk.Week),
			LastTickAt:    clk.LastTickAt,
			UpdatedAt:     time.Now(),
		}).
		FirstOrCreate(&model.WorldClock{}).Error
}
