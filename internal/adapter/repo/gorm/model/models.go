package model

import "time"

// Hand-maintained mirror of the migrated schema; tools/modelgen can regenerate
// these from a live database.

type QueueRecord struct {
	ID            string     `gorm:"column:id;primaryKey" json:"id"`
	PlayerID      string     `gorm:"column:player_id;not null" json:"player_id"`
	Action        string     `gorm:"column:action;not null" json:"action"`
	Params        []byte     `gorm:"column:params" json:"params"`
	Status        string     `gorm:"column:status;not null" json:"status"`
	Total         int32      `gorm:"column:total;not null" json:"total"`
	Completed     int32      `gorm:"column:completed;not null" json:"completed"`
	TotalXp       int32      `gorm:"column:total_xp;not null" json:"total_xp"`
	TotalQuantity int32      `gorm:"column:total_quantity;not null" json:"total_quantity"`
	StopReason    *string    `gorm:"column:stop_reason" json:"stop_reason"`
	DismissedAt   *time.Time `gorm:"column:dismissed_at" json:"dismissed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (QueueRecord) TableName() string {
	return "queue_records"
}

type WorldClock struct {
	StateKey      string     `gorm:"column:state_key;primaryKey" json:"state_key"`
	CurrentYear   int32      `gorm:"column:current_year;not null" json:"current_year"`
	CurrentSeason string     `gorm:"column:current_season;not null" json:"current_season"`
	CurrentWeek   int32      `gorm:"column:current_week;not null" json:"current_week"`
	LastTickAt    *time.Time `gorm:"column:last_tick_at" json:"last_tick_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (WorldClock) TableName() string {
	return "world_clock"
}
