package models

import (
	"time"

	"gorm.io/gorm"
)

// Performance levels derived from a student's completion ratio.
const (
	LevelExcellent    = "Excellent"
	LevelGood         = "Good"
	LevelAverage      = "Average"
	LevelBelowAverage = "Below Average"
	LevelPoor         = "Poor"
)

// StudentStatistics is a derived rollup of one student's progress in one
// course, keyed by (course_id, student_id). Recomputed wholesale on every
// sync, never patched incrementally.
type StudentStatistics struct {
	gorm.Model
	CourseID             uint       `json:"course_id" gorm:"uniqueIndex:idx_student_stats_course_student;not null"`
	StudentID            uint       `json:"student_id" gorm:"uniqueIndex:idx_student_stats_course_student;not null"`
	StudentName          string     `json:"student_name"`
	TotalActivities      int        `json:"total_activities" gorm:"default:0"`
	CompletedActivities  int        `json:"completed_activities" gorm:"default:0"`
	PassedActivities     int        `json:"passed_activities" gorm:"default:0"`
	FailedActivities     int        `json:"failed_activities" gorm:"default:0"`
	RemainingActivities  int        `json:"remaining_activities" gorm:"default:0"`
	CompletionPercentage float64    `json:"completion_percentage" gorm:"default:0"`
	PassPercentage       float64    `json:"pass_percentage" gorm:"default:0"`
	IsActive             bool       `json:"is_active" gorm:"default:false"`
	PerformanceLevel     string     `json:"performance_level"`
	LastCourseAccess     *time.Time `json:"last_course_access"`
}

// ActivityStatistics is a derived per-activity rollup across all enrolled
// students of a course, keyed by (course_id, activity_id).
type ActivityStatistics struct {
	gorm.Model
	CourseID           uint    `json:"course_id" gorm:"uniqueIndex:idx_activity_stats_course_activity;not null"`
	ActivityID         uint    `json:"activity_id" gorm:"uniqueIndex:idx_activity_stats_course_activity;not null"`
	ActivityName       string  `json:"activity_name"`
	ActivityType       string  `json:"activity_type"`
	SectionNumber      int     `json:"section_number"`
	TotalStudents      int     `json:"total_students" gorm:"default:0"`
	StudentsCompleted  int     `json:"students_completed" gorm:"default:0"`
	StudentsPassed     int     `json:"students_passed" gorm:"default:0"`
	StudentsFailed     int     `json:"students_failed" gorm:"default:0"`
	StudentsNotStarted int     `json:"students_not_started" gorm:"default:0"`
	CompletionRate     float64 `json:"completion_rate" gorm:"default:0"`
	PassRate           float64 `json:"pass_rate" gorm:"default:0"`
}
