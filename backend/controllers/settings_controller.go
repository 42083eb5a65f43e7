package controllers

import (
	"studytrack/backend/config"
	"studytrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SettingsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSettingsController(db *gorm.DB, cfg *config.Config) *SettingsController {
	return &SettingsController{DB: db, Cfg: cfg}
}

func (sc *SettingsController) GetSettings(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	return utils.Success(c, fiber.StatusOK, userSettings(sc.DB, userID))
}

// UpdateSettings adjusts the streak configuration. MinDailyMinutes is
// stored in minutes; conversion to the seconds threshold the streak
// calculator uses happens in the progress package.
func (sc *SettingsController) UpdateSettings(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		StreakMode       *string `json:"streak_mode"`
		MinDailyMinutes  *int    `json:"min_daily_minutes"`
		DailyGoalMinutes *int    `json:"daily_goal_minutes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	errs := map[string]string{}
	if input.StreakMode != nil && *input.StreakMode != "any" && *input.StreakMode != "minimum" {
		errs["streak_mode"] = "must be any or minimum"
	}
	if input.MinDailyMinutes != nil && (*input.MinDailyMinutes < 1 || *input.MinDailyMinutes > 1440) {
		errs["min_daily_minutes"] = "must be between 1 and 1440"
	}
	if input.DailyGoalMinutes != nil && (*input.DailyGoalMinutes < 1 || *input.DailyGoalMinutes > 1440) {
		errs["daily_goal_minutes"] = "must be between 1 and 1440"
	}
	if len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	settings := userSettings(sc.DB, userID)
	if input.StreakMode != nil {
		settings.StreakMode = *input.StreakMode
	}
	if input.MinDailyMinutes != nil {
		settings.MinDailyMinutes = *input.MinDailyMinutes
	}
	if input.DailyGoalMinutes != nil {
		settings.DailyGoalMinutes = *input.DailyGoalMinutes
	}

	if settings.ID == 0 {
		if err := sc.DB.Create(&settings).Error; err != nil {
			return utils.InternalServerError(c, "Could not save settings")
		}
	} else if err := sc.DB.Save(&settings).Error; err != nil {
		return utils.InternalServerError(c, "Could not save settings")
	}

	return utils.Success(c, fiber.StatusOK, settings)
}
