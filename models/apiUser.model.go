package models

import "gorm.io/gorm"

// ApiUser is an account allowed to trigger syncs and read reports.
type ApiUser struct {
	gorm.Model
	Name      string `json:"name"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-"`
	IsDeleted bool   `gorm:"default:false"`
}
