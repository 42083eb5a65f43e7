package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"studytrack/backend/config"
	"studytrack/backend/models"
	"studytrack/backend/progress"
	"studytrack/backend/utils"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	token string
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// the in-memory database lives per connection
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := utils.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{JWTSecret: "testsecret"}
	agg := progress.NewAggregator(progress.NewBus())

	app := fiber.New()
	SetupRoutes(app, db, cfg, agg)

	env := &testEnv{app: app, db: db}
	env.token = env.register(t, "testuser", "test@example.com", "password")
	return env
}

func (e *testEnv) register(t *testing.T, username, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username":      username,
		"email":         email,
		"password_hash": password,
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	token, _ := result["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestAuthFlow(t *testing.T) {
	env := setupTest(t)

	// wrong password rejected
	body, _ := json.Marshal(map[string]string{"username": "testuser", "password": "nope"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// correct password returns a token
	body, _ = json.Marshal(map[string]string{"username": "testuser", "password": "password"})
	req = httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.NotEmpty(t, result["token"])
}

func TestAuthRequired(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSubjectsCoreInit(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/api/subjects", nil)
	req.Header.Set("Authorization", env.token)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data []models.Subject `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)
	assert.Len(t, envelope.Data, 3)
	assert.Equal(t, "Physics", envelope.Data[0].Name)
	assert.Equal(t, "Chemistry", envelope.Data[1].Name)
	assert.Equal(t, "Mathematics", envelope.Data[2].Name)

	// second read must not duplicate them
	req = httptest.NewRequest("GET", "/api/subjects", nil)
	req.Header.Set("Authorization", env.token)
	resp, _ = env.app.Test(req, -1)
	envelope.Data = nil
	json.NewDecoder(resp.Body).Decode(&envelope)
	assert.Len(t, envelope.Data, 3)
}

func TestTopicToggleKeepsCounters(t *testing.T) {
	env := setupTest(t)

	subjectID := env.createSubject(t, "Organic Chemistry")

	for _, name := range []string{"Alkanes", "Alkenes", "Alcohols"} {
		body, _ := json.Marshal(map[string]string{"name": name})
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/subjects/%d/topics", subjectID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", env.token)
		resp, _ := env.app.Test(req, -1)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	var subject models.Subject
	env.db.First(&subject, subjectID)
	assert.Equal(t, 3, subject.Total)
	assert.Equal(t, 0, subject.Completed)

	var topic models.Topic
	env.db.Where("subject_id = ?", subjectID).First(&topic)

	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/subjects/%d/topics/%d/toggle", subjectID, topic.ID), nil)
	req.Header.Set("Authorization", env.token)
	resp, _ := env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	env.db.First(&subject, subjectID)
	assert.Equal(t, 3, subject.Total)
	assert.Equal(t, 1, subject.Completed)

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/subjects/%d/topics/%d", subjectID, topic.ID), nil)
	req.Header.Set("Authorization", env.token)
	resp, _ = env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	env.db.First(&subject, subjectID)
	assert.Equal(t, 2, subject.Total)
	assert.Equal(t, 0, subject.Completed)
}

func TestBulkToggleReturnsFreshSnapshot(t *testing.T) {
	env := setupTest(t)

	subjectID := env.createSubject(t, "Physics")

	var topicIDs []uint
	for _, name := range []string{"Kinematics", "Dynamics"} {
		body, _ := json.Marshal(map[string]string{"name": name})
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/subjects/%d/topics", subjectID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", env.token)
		env.app.Test(req, -1)
	}
	var topics []models.Topic
	env.db.Where("subject_id = ?", subjectID).Find(&topics)
	for _, tp := range topics {
		topicIDs = append(topicIDs, tp.ID)
	}

	body, _ := json.Marshal(map[string]interface{}{"topic_ids": topicIDs, "completed": true})
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/subjects/%d/topics/bulk-toggle", subjectID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", env.token)
	resp, _ := env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data progress.Snapshot `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)
	assert.Equal(t, 100, envelope.Data.Physics)
	assert.Equal(t, 100, envelope.Data.Overall)
}

func TestProgressEndpointUsesCache(t *testing.T) {
	env := setupTest(t)

	get := func() progress.Snapshot {
		req := httptest.NewRequest("GET", "/api/progress", nil)
		req.Header.Set("Authorization", env.token)
		resp, err := env.app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		var envelope struct {
			Data progress.Snapshot `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&envelope)
		return envelope.Data
	}

	first := get()
	second := get()
	assert.Equal(t, first.Timestamp, second.Timestamp)

	// refresh overwrites the cache with a fresh timestamp
	req := httptest.NewRequest("POST", "/api/progress/refresh", nil)
	req.Header.Set("Authorization", env.token)
	resp, _ := env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	third := get()
	assert.True(t, third.Timestamp.After(first.Timestamp))
}

func TestSessionLifecycle(t *testing.T) {
	env := setupTest(t)

	body, _ := json.Marshal(map[string]string{"task_name": "Thermodynamics revision"})
	req := httptest.NewRequest("POST", "/api/sessions/start", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", env.token)
	resp, _ := env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data models.StudySession `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	assert.NotZero(t, created.Data.ID)
	assert.Equal(t, created.Data.StartTime.Format("2006-01-02"), created.Data.Date)

	req = httptest.NewRequest("POST", fmt.Sprintf("/api/sessions/%d/stop", created.Data.ID), nil)
	req.Header.Set("Authorization", env.token)
	resp, _ = env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// stopping twice conflicts
	req = httptest.NewRequest("POST", fmt.Sprintf("/api/sessions/%d/stop", created.Data.ID), nil)
	req.Header.Set("Authorization", env.token)
	resp, _ = env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestDeleteSessionStreakGuard(t *testing.T) {
	env := setupTest(t)

	var user models.User
	env.db.Where("username = ?", "testuser").First(&user)

	// one qualifying session today: deleting it would break the streak
	now := time.Now()
	end := now.Add(-time.Hour)
	session := models.StudySession{
		UserID:    user.ID,
		TaskName:  "Past paper",
		StartTime: now.Add(-2 * time.Hour),
		EndTime:   &end,
		Duration:  3600,
		Date:      now.Format("2006-01-02"),
	}
	env.db.Create(&session)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/sessions/%d", session.ID), nil)
	req.Header.Set("Authorization", env.token)
	resp, _ := env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var envelope struct {
		Details map[string]interface{} `json:"details"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)
	assert.Equal(t, true, envelope.Details["streak_break"])

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/sessions/%d?force=true", session.ID), nil)
	req.Header.Set("Authorization", env.token)
	resp, _ = env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestSettingsValidation(t *testing.T) {
	env := setupTest(t)

	body, _ := json.Marshal(map[string]string{"streak_mode": "sometimes"})
	req := httptest.NewRequest("PUT", "/api/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", env.token)
	resp, _ := env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body, _ = json.Marshal(map[string]interface{}{"streak_mode": "any", "daily_goal_minutes": 90})
	req = httptest.NewRequest("PUT", "/api/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", env.token)
	resp, _ = env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data models.Settings `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)
	assert.Equal(t, "any", envelope.Data.StreakMode)
	assert.Equal(t, 90, envelope.Data.DailyGoalMinutes)
}

func TestGoalCountdown(t *testing.T) {
	env := setupTest(t)

	target := time.Now().AddDate(0, 0, 10)
	body, _ := json.Marshal(map[string]interface{}{
		"title":       "Finish mechanics syllabus",
		"target_date": target.Format(time.RFC3339),
	})
	req := httptest.NewRequest("POST", "/api/goals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", env.token)
	resp, _ := env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/goals", nil)
	req.Header.Set("Authorization", env.token)
	resp, _ = env.app.Test(req, -1)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, float64(10), envelope.Data[0]["days_remaining"])
}

func (e *testEnv) createSubject(t *testing.T, name string) uint {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"name": name})
	req := httptest.NewRequest("POST", "/api/subjects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", e.token)
	resp, err := e.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope struct {
		Data models.Subject `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)
	assert.NotZero(t, envelope.Data.ID)
	return envelope.Data.ID
}
