package controllers

import (
	"strconv"
	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/progress"
	"studytrack/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SessionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSessionsController(db *gorm.DB, cfg *config.Config) *SessionsController {
	return &SessionsController{DB: db, Cfg: cfg}
}

// userSettings loads the user's streak settings, falling back to the
// defaults when the row is missing so streak math never hard-fails.
func userSettings(db *gorm.DB, userID uint) models.Settings {
	var settings models.Settings
	if err := db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return models.Settings{UserID: userID, StreakMode: "minimum", MinDailyMinutes: 60}
	}
	return settings
}

func loadSessions(db *gorm.DB, userID uint) []models.StudySession {
	var sessions []models.StudySession
	db.Where("user_id = ?", userID).Order("start_time DESC").Find(&sessions)
	return sessions
}

// StartSession opens a new session. The Date column is derived from
// StartTime here, once, and never rewritten.
func (sc *SessionsController) StartSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		TaskName string `json:"task_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.TaskName == "" {
		input.TaskName = "Study"
	}

	now := time.Now()
	session := models.StudySession{
		UserID:    userID,
		TaskName:  input.TaskName,
		StartTime: now,
		Date:      now.Format("2006-01-02"),
	}
	if err := sc.DB.Create(&session).Error; err != nil {
		return utils.InternalServerError(c, "Could not create session")
	}

	return utils.Created(c, session)
}

// StopSession closes an open session, computes its duration and awards
// any badges the updated streak state now qualifies for.
func (sc *SessionsController) StopSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid session ID")
	}

	var session models.StudySession
	if err := sc.DB.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return utils.NotFound(c, "Session not found")
	}
	if session.EndTime != nil {
		return utils.Conflict(c, "Session already stopped")
	}

	now := time.Now()
	session.EndTime = &now
	session.Duration = int(now.Sub(session.StartTime).Seconds())
	if session.Duration < 0 {
		session.Duration = 0
	}
	if err := sc.DB.Save(&session).Error; err != nil {
		return utils.InternalServerError(c, "Could not update session")
	}

	newBadges := sc.awardBadges(userID, now)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"session":    session,
		"new_badges": newBadges,
	})
}

func (sc *SessionsController) GetSessions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	sessions := loadSessions(sc.DB, userID)
	return utils.Success(c, fiber.StatusOK, sessions)
}

// DeleteSession removes a session. If the removal would shorten the
// current streak the delete is refused with 409 unless ?force=true,
// so the client can warn the user first.
func (sc *SessionsController) DeleteSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid session ID")
	}

	var session models.StudySession
	if err := sc.DB.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return utils.NotFound(c, "Session not found")
	}

	if c.Query("force") != "true" {
		threshold := progress.ThresholdSeconds(userSettings(sc.DB, userID))
		sessions := loadSessions(sc.DB, userID)
		if progress.WouldDeletingSessionBreakStreak(sessions, session.ID, threshold, time.Now()) {
			return utils.Conflict(c, "Deleting this session would break your streak",
				fiber.Map{"streak_break": true})
		}
	}

	sc.DB.Delete(&session)
	return utils.NoContent(c)
}

// awardBadges persists any badge codes earned but not yet stored and
// returns the newly awarded ones.
func (sc *SessionsController) awardBadges(userID uint, now time.Time) []string {
	threshold := progress.ThresholdSeconds(userSettings(sc.DB, userID))
	state := progress.CalculateStreak(loadSessions(sc.DB, userID), threshold, now)

	var existing []models.Badge
	sc.DB.Where("user_id = ?", userID).Find(&existing)
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b.Code] = true
	}

	var awarded []string
	for _, code := range progress.EarnedBadges(state) {
		if have[code] {
			continue
		}
		sc.DB.Create(&models.Badge{UserID: userID, Code: code, EarnedAt: now})
		awarded = append(awarded, code)
	}
	return awarded
}
