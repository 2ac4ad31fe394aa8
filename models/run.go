package models

import (
	"time"
)

// RunStatusCompleted is the only status a stored run can have.
const RunStatusCompleted = "completed"

// Run is a completed video pipeline run. Rows are inserted once and never updated.
type Run struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	RunID      string    `gorm:"size:255;uniqueIndex;not null" json:"runId"`
	Transcript string    `gorm:"type:text" json:"-"`
	VideoURL   string    `gorm:"type:text;not null" json:"videoUrl"`
	Status     string    `gorm:"default:'completed'" json:"status"`
	Stages     string    `gorm:"size:255" json:"stages,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (Run) TableName() string {
	return "pipeline_runs"
}
