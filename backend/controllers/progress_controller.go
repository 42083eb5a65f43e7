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

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Agg *progress.Aggregator
}

func NewProgressController(db *gorm.DB, cfg *config.Config, agg *progress.Aggregator) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Agg: agg}
}

// GetProgress godoc
// @Summary Get progress snapshot
// @Description Returns per-subject and overall completion percentages.
// @Description Served from a 5-minute cache; the timestamp reveals when the
// @Description snapshot was computed.
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	snap := pc.Agg.Get(userID, func() []models.Subject {
		return loadSubjects(pc.DB, userID)
	})

	return utils.Success(c, fiber.StatusOK, snap)
}

// RefreshProgress godoc
// @Summary Force-refresh the progress snapshot
// @Description Recomputes progress immediately, overwrites the cache and
// @Description broadcasts the update to subscribed readers.
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/refresh [post]
func (pc *ProgressController) RefreshProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	snap := pc.Agg.Refresh(userID, progress.Overall(loadSubjects(pc.DB, userID)))
	return utils.Success(c, fiber.StatusOK, snap)
}

// GetStreak godoc
// @Summary Get streak state
// @Description Returns the current and longest consecutive-day study streaks
// @Description plus the total number of days studied, honoring the user's
// @Description streak mode setting.
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/streak [get]
func (pc *ProgressController) GetStreak(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	threshold := progress.ThresholdSeconds(userSettings(pc.DB, userID))
	state := progress.CalculateStreak(loadSessions(pc.DB, userID), threshold, time.Now())

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"current":       state.Current,
		"longest":       state.Longest,
		"total_days":    len(state.DatesStudied),
		"dates_studied": state.DatesStudied,
		"last_date":     state.LastDate,
	})
}

// GetBadges returns the user's earned badges, newest first.
func (pc *ProgressController) GetBadges(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var badges []models.Badge
	if err := pc.DB.Where("user_id = ?", userID).Order("earned_at DESC").Find(&badges).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch badges")
	}

	return utils.Success(c, fiber.StatusOK, badges)
}

// GetHistory returns the persisted nightly snapshots, oldest first,
// capped at 90 rows for chart rendering.
func (pc *ProgressController) GetHistory(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var snapshots []models.ProgressSnapshot
	if err := pc.DB.Where("user_id = ?", userID).Order("taken_at").Limit(90).Find(&snapshots).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch history")
	}

	return utils.Success(c, fiber.StatusOK, snapshots)
}
