package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"studytrack/backend/config"
	"studytrack/backend/utils"
)

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}

	app := fiber.New()
	app.Get("/protected", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// no token
	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// garbage token
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "not-a-token")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// valid token round-trips
	token, err := utils.GenerateJWTToken(42, cfg)
	assert.NoError(t, err)

	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestExtractUserIDFromToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	token, err := utils.GenerateJWTToken(7, cfg)
	assert.NoError(t, err)

	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// token signed with another secret is rejected
	otherToken, _ := utils.GenerateJWTToken(7, &config.Config{JWTSecret: "other"})
	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", otherToken)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
