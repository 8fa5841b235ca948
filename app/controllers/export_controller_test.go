package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/internal/pkg/exports"
)

// stubExpenseRepo is an in-memory repository.ExpenseRepository for handler
// tests.
type stubExpenseRepo struct {
	expenses []models.Expense
}

func (r *stubExpenseRepo) Create(expense *models.Expense) error {
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *stubExpenseRepo) GetByUUID(userID uint, uuid string) (*models.Expense, error) {
	for i := range r.expenses {
		if r.expenses[i].UserID == userID && r.expenses[i].UUID == uuid {
			e := r.expenses[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubExpenseRepo) ListByUser(userID uint) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range r.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubExpenseRepo) Update(expense *models.Expense) error { return nil }

func (r *stubExpenseRepo) Delete(userID uint, uuid string) error { return nil }

func (r *stubExpenseRepo) CountByUser(userID uint) (int64, error) {
	n, _ := r.ListByUser(userID)
	return int64(len(n)), nil
}

func testExpenses(userID uint) []models.Expense {
	return []models.Expense{
		{
			UserID:    userID,
			UUID:      "e1",
			Title:     "Groceries",
			Amount:    42.50,
			Date:      time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Category:  models.CategoryFood,
			CreatedAt: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			UserID:    userID,
			UUID:      "e2",
			Title:     "Bus ticket",
			Amount:    3.20,
			Date:      time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			Category:  models.CategoryTransport,
			CreatedAt: time.Date(2025, 6, 9, 7, 30, 0, 0, time.UTC),
		},
	}
}

func TestExportCSVUnauthorized(t *testing.T) {
	setupSubscriptionTest(newStubSubscriptionRepo())

	app := fiber.New()
	app.Get("/exports/csv", HandleExportCSV)

	req := httptest.NewRequest(http.MethodGet, "/exports/csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestExportCSVRequiresBusinessPlan(t *testing.T) {
	repo := newStubSubscriptionRepo()
	repo.addSubscription(7, models.PlanFree)
	setupSubscriptionTest(repo)

	app := fiber.New()
	app.Get("/exports/csv", withTestUser(7, "test@example.com"), HandleExportCSV)

	req := httptest.NewRequest(http.MethodGet, "/exports/csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "plan_required", body["error"])
	assert.Equal(t, true, body["requiresUpgrade"])
	assert.Equal(t, models.PlanFree, body["currentPlan"])
}

func TestExportCSVRejectsProPlan(t *testing.T) {
	repo := newStubSubscriptionRepo()
	repo.addSubscription(7, models.PlanPro)
	setupSubscriptionTest(repo)

	app := fiber.New()
	app.Get("/exports/csv", withTestUser(7, "test@example.com"), HandleExportCSV)

	req := httptest.NewRequest(http.MethodGet, "/exports/csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, models.PlanPro, body["currentPlan"])
}

func TestExportCSVSucceedsForBusinessPlan(t *testing.T) {
	repo := newStubSubscriptionRepo()
	repo.addSubscription(7, models.PlanBusiness)
	setupSubscriptionTest(repo)
	InitializeExpenseController(&stubExpenseRepo{expenses: testExpenses(7)})

	app := fiber.New()
	app.Get("/exports/csv", withTestUser(7, "test@example.com"), HandleExportCSV)

	req := httptest.NewRequest(http.MethodGet, "/exports/csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	filename := exports.CSVFilename(time.Now())
	assert.Equal(t, `attachment; filename="`+filename+`"`, resp.Header.Get(fiber.HeaderContentDisposition))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(string(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Title","Amount","Date","Category","Notes","Created At"`, lines[0])
	assert.Contains(t, lines[1], `"Groceries"`)
	assert.Contains(t, lines[2], `"Bus ticket"`)
}

func TestExportPDFSucceedsForProPlan(t *testing.T) {
	repo := newStubSubscriptionRepo()
	repo.addSubscription(7, models.PlanPro)
	setupSubscriptionTest(repo)
	InitializeExpenseController(&stubExpenseRepo{expenses: testExpenses(7)})

	app := fiber.New()
	app.Get("/exports/pdf", withTestUser(7, "test@example.com"), HandleExportPDF)

	req := httptest.NewRequest(http.MethodGet, "/exports/pdf", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))

	report := decodeBody(t, resp)
	metadata := report["report_metadata"].(map[string]interface{})
	assert.Equal(t, "test@example.com", metadata["user_email"])
	assert.Len(t, report["expenses"], 2)
}

func TestExportPDFRequiresCapablePlan(t *testing.T) {
	repo := newStubSubscriptionRepo()
	repo.addSubscription(7, models.PlanFree)
	setupSubscriptionTest(repo)

	app := fiber.New()
	app.Get("/exports/pdf", withTestUser(7, "test@example.com"), HandleExportPDF)

	req := httptest.NewRequest(http.MethodGet, "/exports/pdf", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "plan_required", body["error"])
	assert.Equal(t, true, body["requiresUpgrade"])
	assert.Equal(t, models.PlanFree, body["currentPlan"])
}
