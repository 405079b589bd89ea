package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	SyncRunKindBackfill = "backfill"
)

const (
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncSourceConsumer = "consumer"
	SyncSourceBackfill = "backfill"
)

type SyncRun struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	RunId         string     `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	Kind          string     `gorm:"index;size:20;not null" json:"kind"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	FiltersJSON   []byte     `gorm:"type:json" json:"filters"`
	StatsJSON     []byte     `gorm:"type:json" json:"stats"`
	RecordsSynced int        `json:"records_synced"`
	ErrorCount    int        `json:"error_count"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SyncRun) TableName() string { return "sync_runs" }

// SyncError is one entity that failed to sync, from either the consumer or a
// backfill run (SyncRunId is set only for the latter).
type SyncError struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	SyncRunId  *uint     `gorm:"index" json:"sync_run_id"`
	Source     string    `gorm:"size:20;not null" json:"source"`
	EntityType string    `gorm:"index;size:50" json:"entity_type"`
	NaturalId  string    `gorm:"index;size:64" json:"natural_id"`
	Action     string    `gorm:"size:20" json:"action"`
	ErrorKind  string    `gorm:"size:32" json:"error_kind"`
	Message    string    `gorm:"type:text" json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SyncError) TableName() string { return "sync_errors" }

func CreateSyncError(ctx context.Context, db *gorm.DB, rec SyncError) error {
	return db.WithContext(ctx).Create(&rec).Error
}
