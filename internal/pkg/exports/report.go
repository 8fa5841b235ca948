package exports

import (
	"fmt"
	"time"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/internal/pkg/statistics"
)

// Report is the structured expense report offered as the downloadable
// document on the PDF export endpoint.
type Report struct {
	Metadata          ReportMetadata      `json:"report_metadata"`
	Summary           ReportSummary       `json:"summary"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	Expenses          []ReportExpense     `json:"expenses"`
}

type ReportMetadata struct {
	GeneratedAt   string `json:"generated_at"`
	GeneratedDate string `json:"generated_date"`
	UserEmail     string `json:"user_email"`
	ReportType    string `json:"report_type"`
	Version       string `json:"version"`
}

type ReportSummary struct {
	TotalExpenses  int       `json:"total_expenses"`
	TotalAmount    float64   `json:"total_amount"`
	AverageExpense float64   `json:"average_expense"`
	Currency       string    `json:"currency"`
	DateRange      DateRange `json:"date_range"`
}

type DateRange struct {
	Earliest string `json:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty"`
}

type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ReportExpense struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Category  string  `json:"category"`
	Notes     string  `json:"notes"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// BuildReport assembles the report document for a user's expenses. Expenses
// are expected newest-first.
func BuildReport(userEmail string, expenses []models.Expense, now time.Time) Report {
	summary := statistics.Summarize(expenses)

	breakdown := make([]CategoryBreakdown, 0)
	for _, ct := range statistics.CategoryBreakdown(expenses) {
		percentage := 0.0
		if summary.TotalAmount > 0 {
			percentage = statistics.Round2(ct.Total / summary.TotalAmount * 100)
		}
		breakdown = append(breakdown, CategoryBreakdown{
			Category:   ct.Category,
			Total:      ct.Total,
			Count:      ct.Count,
			Percentage: percentage,
		})
	}

	items := make([]ReportExpense, 0, len(expenses))
	for _, e := range expenses {
		title := e.Title
		if title == "" {
			title = "Untitled"
		}
		category := e.Category
		if category == "" {
			category = models.CategoryOther
		}
		items = append(items, ReportExpense{
			ID:        e.UUID,
			Title:     title,
			Amount:    statistics.Round2(e.Amount),
			Date:      e.Date.Format("2006-01-02"),
			Category:  category,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	return Report{
		Metadata: ReportMetadata{
			GeneratedAt:   now.UTC().Format(time.RFC3339),
			GeneratedDate: now.UTC().Format("January 2, 2006"),
			UserEmail:     userEmail,
			ReportType:    "expense_export",
			Version:       "1.0",
		},
		Summary: ReportSummary{
			TotalExpenses:  summary.TotalExpenses,
			TotalAmount:    summary.TotalAmount,
			AverageExpense: summary.AverageExpense,
			Currency:       summary.Currency,
			DateRange: DateRange{
				Earliest: summary.EarliestDate,
				Latest:   summary.LatestDate,
			},
		},
		CategoryBreakdown: breakdown,
		Expenses:          items,
	}
}

// ReportFilename returns the attachment name for a report generated at t.
func ReportFilename(t time.Time) string {
	return fmt.Sprintf("expense_report_%s.json", t.UTC().Format("2006-01-02"))
}
