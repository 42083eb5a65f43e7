package controllers

import (
	"math"
	"strconv"
	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GoalsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGoalsController(db *gorm.DB, cfg *config.Config) *GoalsController {
	return &GoalsController{DB: db, Cfg: cfg}
}

// daysRemaining counts whole calendar days from now until target.
// Past targets go negative so the UI can show "overdue by N days".
func daysRemaining(target time.Time, now time.Time) int {
	startOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return int(math.Round(startOfDay(target).Sub(startOfDay(now)).Hours() / 24))
}

func (gc *GoalsController) GetGoals(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var goals []models.Goal
	if err := gc.DB.Where("user_id = ?", userID).Order("target_date, id").Find(&goals).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch goals")
	}

	now := time.Now()
	result := make([]fiber.Map, 0, len(goals))
	for _, g := range goals {
		result = append(result, fiber.Map{
			"id":             g.ID,
			"title":          g.Title,
			"description":    g.Description,
			"target_date":    g.TargetDate,
			"completed":      g.Completed,
			"days_remaining": daysRemaining(g.TargetDate, now),
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (gc *GoalsController) CreateGoal(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		TargetDate  time.Time `json:"target_date"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Goal title is required")
	}
	if input.TargetDate.IsZero() {
		return utils.BadRequest(c, "Goal target date is required")
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		TargetDate:  input.TargetDate,
	}
	if err := gc.DB.Create(&goal).Error; err != nil {
		return utils.InternalServerError(c, "Could not create goal")
	}

	return utils.Created(c, goal)
}

func (gc *GoalsController) ToggleGoal(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	goalID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid goal ID")
	}

	var goal models.Goal
	if err := gc.DB.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return utils.NotFound(c, "Goal not found")
	}

	goal.Completed = !goal.Completed
	if err := gc.DB.Save(&goal).Error; err != nil {
		return utils.InternalServerError(c, "Could not update goal")
	}

	return utils.Success(c, fiber.StatusOK, goal)
}

func (gc *GoalsController) DeleteGoal(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	goalID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid goal ID")
	}

	result := gc.DB.Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.Goal{})
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Goal not found")
	}

	return utils.NoContent(c)
}
