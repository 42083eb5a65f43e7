package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"password_hash"`
	Role         string `gorm:"default:user" json:"role"` // user, admin
	Group        string `json:"group"`
	University   string `json:"university"`
}

type Settings struct {
	gorm.Model
	UserID           uint   `gorm:"uniqueIndex"`
	StreakMode       string `gorm:"default:minimum"` // any, minimum
	MinDailyMinutes  int    `gorm:"default:60"`
	DailyGoalMinutes int    `gorm:"default:120"`
}
