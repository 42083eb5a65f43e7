package controllers

import (
	"strconv"
	"strings"
	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewNotesController(db *gorm.DB, cfg *config.Config) *NotesController {
	return &NotesController{DB: db, Cfg: cfg}
}

// GetNotes returns the user's notes, optionally filtered by tag or a
// case-insensitive search over title and content.
func (nc *NotesController) GetNotes(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	query := nc.DB.Where("user_id = ?", userID)
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("tags LIKE ?", "%"+tag+"%")
	}
	if search := c.Query("search"); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", needle, needle)
	}

	var notes []models.Note
	if err := query.Order("updated_at DESC").Find(&notes).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch notes")
	}

	return utils.Success(c, fiber.StatusOK, notes)
}

func (nc *NotesController) CreateNote(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Tags    string `json:"tags"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Note title is required")
	}

	note := models.Note{
		UserID:  userID,
		Title:   input.Title,
		Content: input.Content,
		Tags:    input.Tags,
	}
	if err := nc.DB.Create(&note).Error; err != nil {
		return utils.InternalServerError(c, "Could not create note")
	}

	return utils.Created(c, note)
}

func (nc *NotesController) UpdateNote(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	noteID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid note ID")
	}

	var note models.Note
	if err := nc.DB.Where("id = ? AND user_id = ?", noteID, userID).First(&note).Error; err != nil {
		return utils.NotFound(c, "Note not found")
	}

	var input struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Tags    *string `json:"tags"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if input.Tags != nil {
		note.Tags = *input.Tags
	}

	if err := nc.DB.Save(&note).Error; err != nil {
		return utils.InternalServerError(c, "Could not update note")
	}

	return utils.Success(c, fiber.StatusOK, note)
}

func (nc *NotesController) DeleteNote(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	noteID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid note ID")
	}

	result := nc.DB.Where("id = ? AND user_id = ?", noteID, userID).Delete(&models.Note{})
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Note not found")
	}

	return utils.NoContent(c)
}
