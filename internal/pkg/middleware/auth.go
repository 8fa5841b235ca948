package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/app/repository"
	"github.com/pennywiseapp/pennywise/internal/pkg/usercontext"
)

// TokenAuthMiddleware authenticates requests carrying a bearer token issued at
// login. On success the user context is stored in Locals for downstream
// handlers.
func TokenAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractTokenFromHeader(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		repos := repository.GetGlobalFactory().GetRepositories()

		token, err := repos.Token.GetByHash(models.HashToken(raw))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid token"})
			}
			log.Errorf("[Auth] token lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification failed"})
		}
		if !token.IsValid() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Token expired or revoked"})
		}

		user, err := repos.User.GetByID(token.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid token"})
			}
			log.Errorf("[Auth] user lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification failed"})
		}
		if !user.IsActive() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Account is not active"})
		}

		// Refresh last-used timestamp best-effort.
		if err := repos.Token.TouchUsage(token.ID); err != nil {
			log.Warnf("[Auth] failed to update token usage for user %d: %v", user.ID, err)
		}

		userCtx := usercontext.UserContext{
			UserID:     user.ID,
			Email:      user.Email,
			Name:       user.Name,
			IsLoggedIn: true,
		}
		c.Locals(usercontext.KeyUserContext, userCtx)
		c.Locals(usercontext.KeyUserID, user.ID)
		c.Locals(usercontext.KeyEmail, user.Email)
		c.Locals(usercontext.KeyAuthToken, token.ID)

		return c.Next()
	}
}

func extractTokenFromHeader(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return strings.TrimSpace(c.Get("X-API-Token"))
}
