package controllers

import (
	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/progress"
	"studytrack/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Agg *progress.Aggregator
}

func NewUserController(db *gorm.DB, cfg *config.Config, agg *progress.Aggregator) *UserController {
	return &UserController{DB: db, Cfg: cfg, Agg: agg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile with a study summary
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	snap := uc.Agg.Get(userID, func() []models.Subject {
		return loadSubjects(uc.DB, userID)
	})

	threshold := progress.ThresholdSeconds(userSettings(uc.DB, userID))
	streak := progress.CalculateStreak(loadSessions(uc.DB, userID), threshold, time.Now())

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"group":      user.Group,
		"university": user.University,
		"created_at": user.CreatedAt,
		"progress":   snap,
		"streak":     streak.Current,
	})
}

// UpdateProfile updates username, email or password. A password change
// requires the old password.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
		Group       string `json:"group"`
		University  string `json:"university"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Username != "" && input.Username != user.Username {
		var count int64
		uc.DB.Model(&models.User{}).Where("username = ? AND id <> ?", input.Username, userID).Count(&count)
		if count > 0 {
			return utils.Conflict(c, "Username already taken")
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		var count int64
		uc.DB.Model(&models.User{}).Where("email = ? AND id <> ?", input.Email, userID).Count(&count)
		if count > 0 {
			return utils.Conflict(c, "Email already taken")
		}
		user.Email = input.Email
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Old password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashed)
	}

	if input.Group != "" {
		user.Group = input.Group
	}
	if input.University != "" {
		user.University = input.University
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
