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

type TasksController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTasksController(db *gorm.DB, cfg *config.Config) *TasksController {
	return &TasksController{DB: db, Cfg: cfg}
}

// GetTasks returns the user's tasks, paginated, optionally filtered by
// completion state (?completed=true|false).
func (tc *TasksController) GetTasks(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := tc.DB.Model(&models.Task{}).Where("user_id = ?", userID)
	if completed := c.Query("completed"); completed != "" {
		query = query.Where("completed = ?", completed == "true")
	}

	var total int64
	query.Count(&total)

	var tasks []models.Task
	if err := query.Order("due_date IS NULL, due_date, id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch tasks")
	}

	return utils.Paginate(c, tasks, total, page, pageSize)
}

func (tc *TasksController) CreateTask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		Priority    string     `json:"priority"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Task title is required")
	}
	if input.Priority == "" {
		input.Priority = "medium"
	}

	task := models.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
	}
	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.InternalServerError(c, "Could not create task")
	}

	return utils.Created(c, task)
}

func (tc *TasksController) UpdateTask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	task, err := tc.ownedTask(c, userID)
	if task == nil {
		return err
	}

	var input struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		Priority    *string    `json:"priority"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	if err := tc.DB.Save(task).Error; err != nil {
		return utils.InternalServerError(c, "Could not update task")
	}

	return utils.Success(c, fiber.StatusOK, task)
}

func (tc *TasksController) ToggleTask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	task, err := tc.ownedTask(c, userID)
	if task == nil {
		return err
	}

	task.Completed = !task.Completed
	if err := tc.DB.Save(task).Error; err != nil {
		return utils.InternalServerError(c, "Could not update task")
	}

	return utils.Success(c, fiber.StatusOK, task)
}

func (tc *TasksController) DeleteTask(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	task, err := tc.ownedTask(c, userID)
	if task == nil {
		return err
	}

	tc.DB.Delete(task)
	return utils.NoContent(c)
}

func (tc *TasksController) ownedTask(c *fiber.Ctx, userID uint) (*models.Task, error) {
	taskID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid task ID")
	}

	var task models.Task
	if err := tc.DB.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return nil, utils.NotFound(c, "Task not found")
	}
	return &task, nil
}
