package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseCompletionSummary is a derived per-student rollup for one course,
// fully recomputed on every sync from the ActivityCompletion records of
// activities with completion tracking enabled. Keyed by (course_id, student_id).
type CourseCompletionSummary struct {
	gorm.Model
	CourseID             uint       `json:"course_id" gorm:"uniqueIndex:idx_summary_course_student;not null"`
	StudentID            uint       `json:"student_id" gorm:"uniqueIndex:idx_summary_course_student;not null"`
	TotalActivities      int        `json:"total_activities" gorm:"default:0"`
	CompletedActivities  int        `json:"completed_activities" gorm:"default:0"`
	CompletionPercentage float64    `json:"completion_percentage" gorm:"default:0"`
	IsCourseCompleted    bool       `json:"is_course_completed" gorm:"default:false"`
	CompletionDate       *time.Time `json:"completion_date"`
}
