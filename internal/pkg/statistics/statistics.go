package statistics

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/internal/pkg/cache"
)

const (
	CacheKeySummary = "statistics:expenses:summary:%d" // format with user ID
	CacheExpiration = 30 * time.Minute
)

// Summary aggregates a user's expenses for the dashboard and reports.
type Summary struct {
	TotalExpenses  int     `json:"total_expenses"`
	TotalAmount    float64 `json:"total_amount"`
	AverageExpense float64 `json:"average_expense"`
	Currency       string  `json:"currency"`
	EarliestDate   string  `json:"earliest_date,omitempty"`
	LatestDate     string  `json:"latest_date,omitempty"`

	Categories []CategoryTotal `json:"categories,omitempty"`
}

// CategoryTotal is the per-category slice of a summary.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// Summarize computes the aggregate view of a user's expenses. Expenses are
// expected newest-first, the order the repositories return them in.
func Summarize(expenses []models.Expense) Summary {
	summary := Summary{Currency: "USD"}
	if len(expenses) == 0 {
		return summary
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}

	summary.TotalExpenses = len(expenses)
	summary.TotalAmount = Round2(total)
	summary.AverageExpense = Round2(total / float64(len(expenses)))
	summary.EarliestDate = expenses[len(expenses)-1].Date.Format("2006-01-02")
	summary.LatestDate = expenses[0].Date.Format("2006-01-02")
	return summary
}

// CategoryBreakdown groups expenses by category in display order, dropping
// categories without entries.
func CategoryBreakdown(expenses []models.Expense) []CategoryTotal {
	totals := make(map[string]*CategoryTotal)
	for _, e := range expenses {
		ct, ok := totals[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			totals[e.Category] = ct
		}
		ct.Total += e.Amount
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, category := range models.ExpenseCategories {
		if ct, ok := totals[category]; ok {
			ct.Total = Round2(ct.Total)
			out = append(out, *ct)
		}
	}
	return out
}

// Round2 rounds to two decimal places, the precision of stored amounts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetCachedSummary returns the cached summary for a user, or false on miss.
func GetCachedSummary(userID uint) (Summary, bool) {
	raw, err := cache.Get(fmt.Sprintf(CacheKeySummary, userID))
	if err != nil {
		return Summary{}, false
	}
	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return Summary{}, false
	}
	return summary, true
}

// CacheSummary stores the summary for a user. Failures are logged only; the
// cache is an optimization, not a source of truth.
func CacheSummary(userID uint, summary Summary) {
	b, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := cache.Set(fmt.Sprintf(CacheKeySummary, userID), string(b), CacheExpiration); err != nil {
		log.Warnf("[Statistics] failed to cache summary for user %d: %v", userID, err)
	}
}

// InvalidateSummary drops the cached summary after an expense mutation.
func InvalidateSummary(userID uint) {
	if err := cache.Delete(fmt.Sprintf(CacheKeySummary, userID)); err != nil {
		log.Warnf("[Statistics] failed to invalidate summary for user %d: %v", userID, err)
	}
}
