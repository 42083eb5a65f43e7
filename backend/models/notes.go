package models

import "gorm.io/gorm"

type Note struct {
	gorm.Model
	UserID  uint `gorm:"index"`
	Title   string
	Content string
	Tags    string // comma-separated
}
