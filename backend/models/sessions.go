package models

import (
	"time"

	"gorm.io/gorm"
)

// StudySession is immutable once stopped, except for deletion. Date is
// set from StartTime when the session is created and never re-derived;
// all streak math works from StartTime instead (see backend/progress).
type StudySession struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	TaskName  string
	StartTime time.Time
	EndTime   *time.Time
	Duration  int    `gorm:"default:0"` // seconds
	Date      string `gorm:"index"`     // 2006-01-02
}

type CalendarEvent struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	Title     string
	Date      string `gorm:"index"` // 2006-01-02
	StartTime string // 15:04
	EndTime   string // 15:04
	Kind      string `gorm:"default:study"` // study, exam, deadline, other
}
