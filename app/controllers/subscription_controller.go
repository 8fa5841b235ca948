package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/app/repository"
	"github.com/pennywiseapp/pennywise/internal/pkg/database"
	"github.com/pennywiseapp/pennywise/internal/pkg/subscription"
)

var subscriptionService *subscription.Service

// InitializeSubscriptionController wires the subscription service. Tests pass
// a service backed by a fake repository.
func InitializeSubscriptionController(svc *subscription.Service) {
	subscriptionService = svc
}

func getSubscriptionService() *subscription.Service {
	if subscriptionService == nil {
		subscriptionService = subscription.NewServiceFromDB(database.GetDB())
	}
	return subscriptionService
}

// HandleEnsureSubscription guarantees the user holds exactly one subscription
// and returns its entitlement snapshot. Safe to call repeatedly.
func HandleEnsureSubscription(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, created, err := getSubscriptionService().EnsureSubscription(ctx, userCtx.UserID)
	if err != nil {
		return subscriptionErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"subscription": snapshot,
		"created":      created,
	})
}

// HandleChangePlan switches the user to the requested plan, creating the
// subscription if none exists yet.
func HandleChangePlan(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req struct {
		Plan     string `json:"plan"`
		PlanName string `json:"planName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	planName := req.Plan
	if planName == "" {
		planName = req.PlanName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, err := getSubscriptionService().ChangePlan(ctx, userCtx.UserID, strings.TrimSpace(strings.ToLower(planName)))
	if err != nil {
		return subscriptionErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"subscription": snapshot})
}

// HandleCurrentSubscription returns the entitlement snapshot without creating
// anything.
func HandleCurrentSubscription(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, err := getSubscriptionService().CurrentSnapshot(ctx, userCtx.UserID)
	if err != nil {
		return subscriptionErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"subscription": snapshot})
}

// HandleListPlans returns the public plan catalog sorted by price.
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().List()
	if err != nil {
		log.Errorf("[Subscription] plan catalog load failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plans"})
	}

	out := make([]fiber.Map, 0, len(plans))
	for _, p := range plans {
		out = append(out, planResponse(&p))
	}
	return c.JSON(fiber.Map{"plans": out})
}

func planResponse(p *models.Plan) fiber.Map {
	return fiber.Map{
		"id":             p.ID,
		"name":           p.Name,
		"display_name":   p.DisplayName,
		"price":          p.Price,
		"features":       p.Features,
		"can_export_csv": p.CanExportCSV,
		"can_export_pdf": p.CanExportPDF,
	}
}

func subscriptionErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, subscription.ErrInvalidPlan):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan", "message": "Invalid plan selected"})
	case errors.Is(err, subscription.ErrNoSubscription):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no_subscription", "message": "No subscription found for this account"})
	case errors.Is(err, subscription.ErrFreePlanMissing):
		log.Errorf("[Subscription] plan catalog misconfigured: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Free plan not found"})
	default:
		log.Errorf("[Subscription] operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription operation failed"})
	}
}
