package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewlew/lewlew-server/internal/services"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return serviceError(c, err)
	})
	resp, terr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, terr)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"post not found", services.ErrPostNotFound, fiber.StatusNotFound},
		{"duplicate report", services.ErrDuplicateReport, fiber.StatusConflict},
		{"phone taken", services.ErrPhoneTaken, fiber.StatusConflict},
		{"username taken", services.ErrUsernameTaken, fiber.StatusConflict},
		{"already liked", services.ErrAlreadyLiked, fiber.StatusConflict},
		{"invalid reason", services.ErrInvalidReason, fiber.StatusBadRequest},
		{"invalid credentials", services.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"sms throttled", services.ErrSMSThrottled, fiber.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(t, tc.err))
		})
	}
}
