package models

import (
	"time"

	"gorm.io/gorm"
)

// Completion state codes as reported by the LMS.
const (
	StateIncomplete     = 0
	StateComplete       = 1
	StateCompletePassed = 2
	StateCompleteFailed = 3
)

// ActivityCompletion is one student's progress on one activity, keyed by
// (course_id, student_id, activity_id). Every (student, activity) pair in a
// course gets exactly one record; absence of progress is state 0.
// IsCompleted/IsPassed/IsFailed are derived from CompletionState and must stay
// consistent with it.
type ActivityCompletion struct {
	gorm.Model
	CourseID        uint       `json:"course_id" gorm:"uniqueIndex:idx_completion_course_student_activity;not null"`
	StudentID       uint       `json:"student_id" gorm:"uniqueIndex:idx_completion_course_student_activity;not null"`
	ActivityID      uint       `json:"activity_id" gorm:"uniqueIndex:idx_completion_course_student_activity;not null"`
	CompletionState int        `json:"completion_state" gorm:"default:0"`
	IsCompleted     bool       `json:"is_completed" gorm:"default:false"`
	IsPassed        bool       `json:"is_passed" gorm:"default:false"`
	IsFailed        bool       `json:"is_failed" gorm:"default:false"`
	TimeCompleted   *time.Time `json:"time_completed"`
}
