package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity is one course module (assignment, quiz, resource, ...) flattened out
// of the LMS section/module nesting. Keyed by (course_id, activity_id).
// Only activities with HasCompletionTracking enter completion denominators.
type Activity struct {
	gorm.Model
	CourseID              uint       `json:"course_id" gorm:"uniqueIndex:idx_activity_course_activity;not null"`
	ActivityID            uint       `json:"activity_id" gorm:"uniqueIndex:idx_activity_course_activity;not null"`
	SectionNumber         int        `json:"section_number"`
	SectionName           string     `json:"section_name"`
	ActivityName          string     `json:"activity_name"`
	ActivityType          string     `json:"activity_type"`
	Visible               bool       `json:"visible" gorm:"default:true"`
	HasCompletionTracking bool       `json:"has_completion_tracking" gorm:"default:false"`
	CompletionExpectedAt  *time.Time `json:"completion_expected_at"`
}
