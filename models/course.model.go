package models

import (
	"time"

	"gorm.io/gorm"
)

// Course mirrors a course record from the LMS. CourseID is the LMS identifier
// and the natural key; records are replaced on every sync, never deleted.
type Course struct {
	gorm.Model
	CourseID   uint       `json:"course_id" gorm:"uniqueIndex;not null"`
	ShortName  string     `json:"short_name"`
	FullName   string     `json:"full_name"`
	CategoryID uint       `json:"category_id"`
	Summary    string     `json:"summary" gorm:"type:text"`
	Format     string     `json:"format"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Visible    bool       `json:"visible" gorm:"default:true"`
}
