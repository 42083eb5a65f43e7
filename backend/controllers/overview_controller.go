package controllers

import (
	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/progress"
	"studytrack/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OverviewController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Agg *progress.Aggregator
}

func NewOverviewController(db *gorm.DB, cfg *config.Config, agg *progress.Aggregator) *OverviewController {
	return &OverviewController{DB: db, Cfg: cfg, Agg: agg}
}

// GetUserOverview returns everything the dashboard needs in one call:
// the cached progress snapshot, streak state, today's study time,
// open tasks and the next calendar entries.
func (oc *OverviewController) GetUserOverview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, oc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	now := time.Now()

	snap := oc.Agg.Get(userID, func() []models.Subject {
		return loadSubjects(oc.DB, userID)
	})

	settings := userSettings(oc.DB, userID)
	sessions := loadSessions(oc.DB, userID)
	streak := progress.CalculateStreak(sessions, progress.ThresholdSeconds(settings), now)

	todaySeconds := progress.GroupSessionsByDate(sessions)[now.Format("2006-01-02")]

	var openTasks []models.Task
	oc.DB.Where("user_id = ? AND completed = ?", userID, false).
		Order("due_date IS NULL, due_date").
		Limit(5).
		Find(&openTasks)

	var upcoming []models.CalendarEvent
	oc.DB.Where("user_id = ? AND date >= ?", userID, now.Format("2006-01-02")).
		Order("date, start_time").
		Limit(5).
		Find(&upcoming)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"progress":           snap,
		"streak":             streak.Current,
		"longest_streak":     streak.Longest,
		"total_days_studied": len(streak.DatesStudied),
		"today_minutes":      todaySeconds / 60,
		"daily_goal_minutes": settings.DailyGoalMinutes,
		"open_tasks":         openTasks,
		"upcoming_events":    upcoming,
	})
}
