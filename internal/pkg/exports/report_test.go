package exports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywiseapp/pennywise/app/models"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	expenses := []models.Expense{
		{
			UUID:     "e2",
			Title:    "Train ticket",
			Amount:   25,
			Date:     time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
			Category: models.CategoryTransport,
		},
		{
			UUID:     "e1",
			Title:    "Groceries",
			Amount:   75,
			Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Category: models.CategoryFood,
		},
	}

	report := BuildReport("jamie@example.com", expenses, now)

	assert.Equal(t, "jamie@example.com", report.Metadata.UserEmail)
	assert.Equal(t, "expense_export", report.Metadata.ReportType)
	assert.Equal(t, "July 1, 2025", report.Metadata.GeneratedDate)

	assert.Equal(t, 2, report.Summary.TotalExpenses)
	assert.Equal(t, 100.0, report.Summary.TotalAmount)
	assert.Equal(t, 50.0, report.Summary.AverageExpense)
	assert.Equal(t, "2025-06-01", report.Summary.DateRange.Earliest)
	assert.Equal(t, "2025-06-20", report.Summary.DateRange.Latest)

	require.Len(t, report.CategoryBreakdown, 2)
	// Display order: Food before Transport.
	assert.Equal(t, models.CategoryFood, report.CategoryBreakdown[0].Category)
	assert.Equal(t, 75.0, report.CategoryBreakdown[0].Percentage)
	assert.Equal(t, 25.0, report.CategoryBreakdown[1].Percentage)

	require.Len(t, report.Expenses, 2)
	assert.Equal(t, "e2", report.Expenses[0].ID)
}

func TestBuildReportDefaults(t *testing.T) {
	now := time.Now()
	expenses := []models.Expense{{UUID: "x", Amount: 5, Date: now}}

	report := BuildReport("jamie@example.com", expenses, now)

	require.Len(t, report.Expenses, 1)
	assert.Equal(t, "Untitled", report.Expenses[0].Title)
	assert.Equal(t, models.CategoryOther, report.Expenses[0].Category)
}

func TestReportFilename(t *testing.T) {
	at := time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "expense_report_2025-07-01.json", ReportFilename(at))
}
