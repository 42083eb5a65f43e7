package models

import "gorm.io/gorm"

type Subject struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	Name      string `gorm:"not null"`
	Completed int    `gorm:"default:0"` // derived from Topics, see controllers
	Total     int    `gorm:"default:0"` // derived from Topics, see controllers
	Topics    []Topic
}

type Topic struct {
	gorm.Model
	SubjectID  uint `gorm:"index"`
	Name       string
	Completed  bool   `gorm:"default:false"`
	Difficulty string `gorm:"default:medium"` // easy, medium, hard
}
