package controllers

import (
	"strconv"
	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CalendarController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCalendarController(db *gorm.DB, cfg *config.Config) *CalendarController {
	return &CalendarController{DB: db, Cfg: cfg}
}

// GetEvents returns the user's calendar entries, optionally scoped to
// one month (?month=2025-03).
func (cc *CalendarController) GetEvents(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	query := cc.DB.Where("user_id = ?", userID)
	if month := c.Query("month"); month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return utils.BadRequest(c, "Month must be formatted as 2006-01")
		}
		query = query.Where("date LIKE ?", month+"%")
	}

	var events []models.CalendarEvent
	if err := query.Order("date, start_time").Find(&events).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch events")
	}

	return utils.Success(c, fiber.StatusOK, events)
}

// GetUpcoming returns the next events from today on, capped at 10.
func (cc *CalendarController) GetUpcoming(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	today := time.Now().Format("2006-01-02")

	var events []models.CalendarEvent
	if err := cc.DB.Where("user_id = ? AND date >= ?", userID, today).
		Order("date, start_time").
		Limit(10).
		Find(&events).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch events")
	}

	return utils.Success(c, fiber.StatusOK, events)
}

func (cc *CalendarController) CreateEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Title     string `json:"title"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Kind      string `json:"kind"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	errs := map[string]string{}
	if input.Title == "" {
		errs["title"] = "required"
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		errs["date"] = "must be formatted as 2006-01-02"
	}
	if len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}
	if input.Kind == "" {
		input.Kind = "study"
	}

	event := models.CalendarEvent{
		UserID:    userID,
		Title:     input.Title,
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Kind:      input.Kind,
	}
	if err := cc.DB.Create(&event).Error; err != nil {
		return utils.InternalServerError(c, "Could not create event")
	}

	return utils.Created(c, event)
}

func (cc *CalendarController) DeleteEvent(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	eventID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid event ID")
	}

	result := cc.DB.Where("id = ? AND user_id = ?", eventID, userID).Delete(&models.CalendarEvent{})
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Event not found")
	}

	return utils.NoContent(c)
}
