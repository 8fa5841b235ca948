package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/pennywiseapp/pennywise/internal/pkg/entitlements"
	"github.com/pennywiseapp/pennywise/internal/pkg/exportarchive"
	"github.com/pennywiseapp/pennywise/internal/pkg/exports"
	"github.com/pennywiseapp/pennywise/internal/pkg/metrics/counter"
)

// HandleExportCSV streams the user's expenses as a CSV download. Requires a
// plan with CSV export capability.
func HandleExportCSV(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	snapshot, ok, errResp := exportEntitlement(c, userCtx.UserID)
	if !ok {
		return errResp
	}
	if !snapshot.CanExportCSV {
		return planRequiredResponse(c, snapshot, "CSV export requires the Business plan")
	}

	expenses, err := getExpenseRepository().ListByUser(userCtx.UserID)
	if err != nil {
		log.Errorf("[Export] expense load failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load expenses"})
	}

	now := time.Now()
	body := []byte(exports.BuildCSV(expenses))
	filename := exports.CSVFilename(now)

	exportarchive.Archive(userCtx.UserID, filename, body, "text/csv")
	if err := counter.AddCSVExport(userCtx.UserID); err != nil {
		log.Warnf("[Export] csv counter increment failed for user %d: %v", userCtx.UserID, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

// HandleExportPDF produces the structured expense report document.
func HandleExportPDF(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	snapshot, ok, errResp := exportEntitlement(c, userCtx.UserID)
	if !ok {
		return errResp
	}
	if !snapshot.CanExportPDF {
		return planRequiredResponse(c, snapshot, "PDF export is not available on your current plan")
	}

	expenses, err := getExpenseRepository().ListByUser(userCtx.UserID)
	if err != nil {
		log.Errorf("[Export] expense load failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load expenses"})
	}

	now := time.Now()
	report := exports.BuildReport(userCtx.Email, expenses, now)
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Errorf("[Export] report encode failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to build report"})
	}
	filename := exports.ReportFilename(now)

	exportarchive.Archive(userCtx.UserID, filename, body, "application/json")
	if err := counter.AddPDFExport(userCtx.UserID); err != nil {
		log.Warnf("[Export] pdf counter increment failed for user %d: %v", userCtx.UserID, err)
	}

	c.Set(fiber.HeaderContentType, "application/json; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

// exportEntitlement resolves the caller's plan capabilities, creating the
// default subscription when none exists. The bool is false when an error
// response has already been written.
func exportEntitlement(c *fiber.Ctx, userID uint) (entitlements.Snapshot, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, _, err := getSubscriptionService().EnsureSubscription(ctx, userID)
	if err != nil {
		return entitlements.Snapshot{}, false, subscriptionErrorResponse(c, err)
	}
	return snapshot, true, nil
}

func planRequiredResponse(c *fiber.Ctx, snapshot entitlements.Snapshot, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":           "plan_required",
		"message":         message,
		"requiresUpgrade": true,
		"currentPlan":     snapshot.PlanName,
	})
}
