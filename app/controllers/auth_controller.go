package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/app/repository"
	"github.com/pennywiseapp/pennywise/internal/pkg/mail"
	"github.com/pennywiseapp/pennywise/internal/pkg/usercontext"
	"github.com/pennywiseapp/pennywise/internal/pkg/utils"
)

// signupWarning is returned alongside a successful signup when the default
// subscription could not be assigned. The account still exists and the
// subscription is created lazily on the next authenticated request.
const signupWarning = "Default subscription not assigned. Please contact support."

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup registers a new account and assigns the free plan.
func HandleSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if !models.IsValidName(req.Name) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_name", "message": "Name must be 2-50 characters (letters, numbers, spaces, hyphens, underscores)"})
	}
	if !models.PasswordMeetsPolicy(req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_password", "message": "Password must be 8-128 characters and contain at least one letter and one digit"})
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := userRepo.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_taken", "message": "An account with this email already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("[Auth] email lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Signup failed"})
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": "Invalid signup data"})
	}
	if err := userRepo.Create(user); err != nil {
		log.Errorf("[Auth] user create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Signup failed"})
	}

	go mail.SendWelcomeMail(user.Email, user.Name)

	response := fiber.Map{
		"user": userResponse(user),
	}

	// Assigning the default plan is best-effort here. A failure degrades to a
	// warning because every authenticated read repairs the subscription anyway.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snapshot, _, err := getSubscriptionService().EnsureSubscription(ctx, user.ID)
	if err != nil {
		log.Warnf("[Auth] default subscription for user %d not assigned: %v", user.ID, err)
		response["warning"] = signupWarning
	} else {
		response["subscription"] = snapshot
	}

	token, raw, err := issueToken(user.ID)
	if err != nil {
		log.Errorf("[Auth] token issue failed for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Signup succeeded but login failed, please log in"})
	}
	response["token"] = raw
	response["expires_at"] = token.ExpiresAt.UTC().Format(time.RFC3339)

	return c.Status(fiber.StatusOK).JSON(response)
}

// HandleLogin authenticates by email and password and issues a bearer token.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_credentials", "message": "Invalid email or password"})
		}
		log.Errorf("[Auth] login lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Login failed"})
	}

	if !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_credentials", "message": "Invalid email or password"})
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Account is not active"})
	}

	if err := userRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		log.Warnf("[Auth] failed to stamp last login for user %d: %v", user.ID, err)
	}

	token, raw, err := issueToken(user.ID)
	if err != nil {
		log.Errorf("[Auth] token issue failed for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Login failed"})
	}

	response := fiber.Map{
		"user":       userResponse(user),
		"token":      raw,
		"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if snapshot, _, err := getSubscriptionService().EnsureSubscription(ctx, user.ID); err == nil {
		response["subscription"] = snapshot
	} else {
		log.Warnf("[Auth] subscription ensure on login failed for user %d: %v", user.ID, err)
	}

	return c.JSON(response)
}

// HandleLogout revokes the bearer token used for the current request.
func HandleLogout(c *fiber.Ctx) error {
	if _, ok := requireUser(c); !ok {
		return nil
	}

	tokenID, _ := c.Locals(usercontext.KeyAuthToken).(uint)
	if tokenID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "No token bound to this request"})
	}

	tokenRepo := repository.GetGlobalFactory().GetTokenRepository()
	token, err := tokenRepo.GetByID(tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
		}
		log.Errorf("[Auth] token lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Logout failed"})
	}

	token.Revoke()
	if err := tokenRepo.Save(token); err != nil {
		log.Errorf("[Auth] token revoke failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Logout failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
}

func issueToken(userID uint) (*models.AuthToken, string, error) {
	token, raw, err := models.IssueAuthToken(userID)
	if err != nil {
		return nil, "", err
	}
	if err := repository.GetGlobalFactory().GetTokenRepository().Create(token); err != nil {
		return nil, "", err
	}
	return token, raw, nil
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"status":        user.Status,
		"avatar_url":    utils.GetGravatarURL(user.Email, 200),
		"created_at":    user.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(user.LastLoginAt),
	}
}
