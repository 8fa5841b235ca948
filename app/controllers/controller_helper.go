package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pennywiseapp/pennywise/internal/pkg/usercontext"
)

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// requireUser resolves the authenticated user context or writes a 401.
// The bool is false when the response has already been sent.
func requireUser(c *fiber.Ctx) (usercontext.UserContext, bool) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
		return usercontext.UserContext{}, false
	}
	return userCtx, true
}
