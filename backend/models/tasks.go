package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string `gorm:"default:medium"` // low, medium, high
	Completed   bool   `gorm:"default:false"`
}

type Goal struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	Title       string
	Description string
	TargetDate  time.Time
	Completed   bool `gorm:"default:false"`
}
