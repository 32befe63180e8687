package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment is the latest known enrollment state of a student in a course,
// keyed by (course_id, student_id). Not a history: every sync replaces it.
type Enrollment struct {
	gorm.Model
	CourseID         uint       `json:"course_id" gorm:"uniqueIndex:idx_enrollment_course_student;not null"`
	StudentID        uint       `json:"student_id" gorm:"uniqueIndex:idx_enrollment_course_student;not null"`
	StudentName      string     `json:"student_name"`
	StudentEmail     string     `json:"student_email"`
	EnrollmentDate   *time.Time `json:"enrollment_date"`
	Role             string     `json:"role" gorm:"default:'student'"`
	Status           string     `json:"status" gorm:"default:'active'"` // active, suspended
	LastCourseAccess *time.Time `json:"last_course_access"`
}
