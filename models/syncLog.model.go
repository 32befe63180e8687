package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sync trigger sources.
const (
	TriggerManual    = "MANUAL"
	TriggerScheduled = "SCHEDULED"
)

// SyncLog records one sync run: a single course sync (CourseID set) or a
// fleet run over all visible courses (CourseID null).
type SyncLog struct {
	gorm.Model
	RunID           string         `json:"run_id" gorm:"uniqueIndex;not null"`
	Trigger         string         `json:"trigger" gorm:"default:'MANUAL'"`
	CourseID        *uint          `json:"course_id" gorm:"index"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	DurationSeconds float64        `json:"duration_seconds" gorm:"default:0"`
	Success         bool           `json:"success" gorm:"default:false"`
	Results         datatypes.JSON `json:"results"`
	Errors          datatypes.JSON `json:"errors"`
}
