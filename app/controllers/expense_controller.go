package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/app/repository"
	"github.com/pennywiseapp/pennywise/internal/pkg/statistics"
)

var expenseRepo repository.ExpenseRepository

// InitializeExpenseController injects the expense repository. When it is not
// called the handlers fall back to the global repository factory.
func InitializeExpenseController(repo repository.ExpenseRepository) {
	expenseRepo = repo
}

func getExpenseRepository() repository.ExpenseRepository {
	if expenseRepo == nil {
		expenseRepo = repository.GetGlobalFactory().GetExpenseRepository()
	}
	return expenseRepo
}

type expenseRequest struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
}

// HandleCreateExpense records a new expense for the authenticated user.
func HandleCreateExpense(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	expense, ok := parseExpenseBody(c, userCtx.UserID)
	if !ok {
		return nil
	}

	if err := getExpenseRepository().Create(expense); err != nil {
		log.Errorf("[Expense] create failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save expense"})
	}

	statistics.InvalidateSummary(userCtx.UserID)

	return c.Status(fiber.StatusCreated).JSON(expense)
}

// HandleListExpenses returns all of the user's expenses, newest first.
func HandleListExpenses(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	expenses, err := getExpenseRepository().ListByUser(userCtx.UserID)
	if err != nil {
		log.Errorf("[Expense] list failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load expenses"})
	}

	return c.JSON(fiber.Map{
		"expenses": expenses,
		"count":    len(expenses),
	})
}

// HandleGetExpense returns a single expense by its public identifier.
func HandleGetExpense(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	expense, err := getExpenseRepository().GetByUUID(userCtx.UserID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Expense not found"})
		}
		log.Errorf("[Expense] lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load expense"})
	}

	return c.JSON(expense)
}

// HandleUpdateExpense replaces the editable fields of an expense.
func HandleUpdateExpense(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	repo := getExpenseRepository()
	expense, err := repo.GetByUUID(userCtx.UserID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Expense not found"})
		}
		log.Errorf("[Expense] lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load expense"})
	}

	updated, ok := parseExpenseBody(c, userCtx.UserID)
	if !ok {
		return nil
	}

	expense.Title = updated.Title
	expense.Amount = updated.Amount
	expense.Date = updated.Date
	expense.Category = updated.Category
	expense.Notes = updated.Notes

	if err := repo.Update(expense); err != nil {
		log.Errorf("[Expense] update failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save expense"})
	}

	statistics.InvalidateSummary(userCtx.UserID)

	return c.JSON(expense)
}

// HandleDeleteExpense soft-deletes an expense.
func HandleDeleteExpense(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	repo := getExpenseRepository()
	if _, err := repo.GetByUUID(userCtx.UserID, c.Params("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Expense not found"})
		}
		log.Errorf("[Expense] lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load expense"})
	}

	if err := repo.Delete(userCtx.UserID, c.Params("id")); err != nil {
		log.Errorf("[Expense] delete failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete expense"})
	}

	statistics.InvalidateSummary(userCtx.UserID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Expense deleted"})
}

// HandleExpenseSummary returns aggregate spending statistics. Results are
// cached per user and invalidated on every write.
func HandleExpenseSummary(c *fiber.Ctx) error {
	userCtx, ok := requireUser(c)
	if !ok {
		return nil
	}

	if summary, found := statistics.GetCachedSummary(userCtx.UserID); found {
		return c.JSON(fiber.Map{"summary": summary, "cached": true})
	}

	expenses, err := getExpenseRepository().ListByUser(userCtx.UserID)
	if err != nil {
		log.Errorf("[Expense] summary load failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load expenses"})
	}

	summary := statistics.Summarize(expenses)
	summary.Categories = statistics.CategoryBreakdown(expenses)
	statistics.CacheSummary(userCtx.UserID, summary)

	return c.JSON(fiber.Map{"summary": summary, "cached": false})
}

// parseExpenseBody reads and validates the request payload. The bool is false
// when an error response has already been written.
func parseExpenseBody(c *fiber.Ctx, userID uint) (*models.Expense, bool) {
	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
		return nil, false
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_date", "message": "Date must be in YYYY-MM-DD format"})
		return nil, false
	}

	category, ok := models.NormalizeCategory(req.Category)
	if !ok {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_category", "message": "Unknown expense category"})
		return nil, false
	}

	expense := &models.Expense{
		UserID:   userID,
		Title:    strings.TrimSpace(req.Title),
		Amount:   req.Amount,
		Date:     date,
		Category: category,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := expense.Validate(); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": "Expense data is invalid"})
		return nil, false
	}

	return expense, true
}
