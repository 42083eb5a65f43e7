package models

import (
	"time"

	"gorm.io/gorm"
)

// ProgressSnapshot is a persisted history row written by the nightly
// rollup job. The live 5-minute cache lives in backend/progress.
type ProgressSnapshot struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	Physics     int
	Chemistry   int
	Mathematics int
	Overall     int
	TakenAt     time.Time
}

type Badge struct {
	gorm.Model
	UserID   uint   `gorm:"index"`
	Code     string `gorm:"not null"`
	EarnedAt time.Time
}
