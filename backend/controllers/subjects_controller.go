package controllers

import (
	"strconv"
	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/progress"
	"studytrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubjectsController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Agg *progress.Aggregator
}

func NewSubjectsController(db *gorm.DB, cfg *config.Config, agg *progress.Aggregator) *SubjectsController {
	return &SubjectsController{DB: db, Cfg: cfg, Agg: agg}
}

// loadSubjects fetches a user's subjects with topics preloaded. Shared
// with the progress controller.
func loadSubjects(db *gorm.DB, userID uint) []models.Subject {
	var subjects []models.Subject
	db.Preload("Topics").Where("user_id = ?", userID).Order("id").Find(&subjects)
	return subjects
}

// recomputeSubjectCounters re-derives the denormalized Completed/Total
// counters from the topics table. Every topic insert, delete and
// toggle must go through this; the counters are never adjusted
// incrementally.
func recomputeSubjectCounters(db *gorm.DB, subjectID uint) error {
	var total, completed int64
	if err := db.Model(&models.Topic{}).Where("subject_id = ?", subjectID).Count(&total).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Topic{}).Where("subject_id = ? AND completed = ?", subjectID, true).Count(&completed).Error; err != nil {
		return err
	}
	return db.Model(&models.Subject{}).Where("id = ?", subjectID).
		Updates(map[string]interface{}{"total": total, "completed": completed}).Error
}

// GetSubjects godoc
// @Summary List subjects
// @Description Returns the user's subjects with topics. Physics, Chemistry and
// @Description Mathematics are created empty on first read so the dashboard can
// @Description always render the three core subjects.
// @Tags subjects
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subjects [get]
func (sc *SubjectsController) GetSubjects(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subjects := loadSubjects(sc.DB, userID)

	// One-time init of the core subjects: anything EnsureCoreSubjects
	// appended does not exist yet and gets persisted now.
	ensured := progress.EnsureCoreSubjects(subjects)
	for i := len(subjects); i < len(ensured); i++ {
		s := ensured[i]
		s.UserID = userID
		if err := sc.DB.Create(&s).Error; err != nil {
			return utils.InternalServerError(c, "Could not create core subjects")
		}
		subjects = append(subjects, s)
	}

	return utils.Success(c, fiber.StatusOK, subjects)
}

func (sc *SubjectsController) CreateSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Subject name is required")
	}

	subject := models.Subject{UserID: userID, Name: input.Name}
	if err := sc.DB.Create(&subject).Error; err != nil {
		return utils.InternalServerError(c, "Could not create subject")
	}

	sc.Agg.Invalidate(userID)
	return utils.Created(c, subject)
}

func (sc *SubjectsController) DeleteSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subject, err := sc.ownedSubject(c, userID)
	if subject == nil {
		return err
	}

	sc.DB.Where("subject_id = ?", subject.ID).Delete(&models.Topic{})
	sc.DB.Delete(subject)

	sc.Agg.Invalidate(userID)
	return utils.NoContent(c)
}

func (sc *SubjectsController) AddTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subject, err := sc.ownedSubject(c, userID)
	if subject == nil {
		return err
	}

	var input struct {
		Name       string `json:"name"`
		Difficulty string `json:"difficulty"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Topic name is required")
	}
	switch input.Difficulty {
	case "":
		input.Difficulty = "medium"
	case "easy", "medium", "hard":
	default:
		return utils.BadRequest(c, "Difficulty must be easy, medium or hard")
	}

	topic := models.Topic{
		SubjectID:  subject.ID,
		Name:       input.Name,
		Difficulty: input.Difficulty,
	}
	if err := sc.DB.Create(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not create topic")
	}

	if err := recomputeSubjectCounters(sc.DB, subject.ID); err != nil {
		return utils.InternalServerError(c, "Could not update subject counters")
	}

	sc.Agg.Invalidate(userID)
	return utils.Created(c, topic)
}

func (sc *SubjectsController) ToggleTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subject, err := sc.ownedSubject(c, userID)
	if subject == nil {
		return err
	}

	topicID, err := strconv.Atoi(c.Params("topicId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	var topic models.Topic
	if err := sc.DB.Where("id = ? AND subject_id = ?", topicID, subject.ID).First(&topic).Error; err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	topic.Completed = !topic.Completed
	if err := sc.DB.Save(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not update topic")
	}

	if err := recomputeSubjectCounters(sc.DB, subject.ID); err != nil {
		return utils.InternalServerError(c, "Could not update subject counters")
	}

	sc.Agg.Invalidate(userID)
	return utils.Success(c, fiber.StatusOK, topic)
}

func (sc *SubjectsController) DeleteTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subject, err := sc.ownedSubject(c, userID)
	if subject == nil {
		return err
	}

	topicID, err := strconv.Atoi(c.Params("topicId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	result := sc.DB.Where("id = ? AND subject_id = ?", topicID, subject.ID).Delete(&models.Topic{})
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Topic not found")
	}

	if err := recomputeSubjectCounters(sc.DB, subject.ID); err != nil {
		return utils.InternalServerError(c, "Could not update subject counters")
	}

	sc.Agg.Invalidate(userID)
	return utils.NoContent(c)
}

// BulkToggleTopics sets the completed flag on several topics at once,
// then force-refreshes the progress cache so subscribed readers get
// the new snapshot immediately instead of waiting out the 5 minutes.
func (sc *SubjectsController) BulkToggleTopics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subject, err := sc.ownedSubject(c, userID)
	if subject == nil {
		return err
	}

	var input struct {
		TopicIDs  []uint `json:"topic_ids"`
		Completed bool   `json:"completed"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if len(input.TopicIDs) == 0 {
		return utils.BadRequest(c, "topic_ids is required")
	}

	if err := sc.DB.Model(&models.Topic{}).
		Where("subject_id = ? AND id IN ?", subject.ID, input.TopicIDs).
		Update("completed", input.Completed).Error; err != nil {
		return utils.InternalServerError(c, "Could not update topics")
	}

	if err := recomputeSubjectCounters(sc.DB, subject.ID); err != nil {
		return utils.InternalServerError(c, "Could not update subject counters")
	}

	snap := sc.Agg.Refresh(userID, progress.Overall(loadSubjects(sc.DB, userID)))
	return utils.Success(c, fiber.StatusOK, snap)
}

// ownedSubject resolves the :id param to a subject belonging to the
// authenticated user, writing the error response itself on failure.
func (sc *SubjectsController) ownedSubject(c *fiber.Ctx, userID uint) (*models.Subject, error) {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := sc.DB.Where("id = ? AND user_id = ?", subjectID, userID).First(&subject).Error; err != nil {
		return nil, utils.NotFound(c, "Subject not found")
	}
	return &subject, nil
}
