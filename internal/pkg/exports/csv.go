package exports

import (
	"fmt"
	"strings"
	"time"

	"github.com/pennywiseapp/pennywise/app/models"
)

// csvHeaders is the fixed column order of the expense export.
var csvHeaders = []string{"Title", "Amount", "Date", "Category", "Notes", "Created At"}

// BuildCSV renders the expense export. Expenses are expected newest-first.
// Every cell is quoted so titles and notes with commas survive spreadsheets.
func BuildCSV(expenses []models.Expense) string {
	var b strings.Builder

	writeCSVRow(&b, csvHeaders)
	for _, e := range expenses {
		writeCSVRow(&b, []string{
			e.Title,
			fmt.Sprintf("%.2f", e.Amount),
			e.Date.Format("2006-01-02"),
			e.Category,
			e.Notes,
			e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// CSVFilename returns the attachment name for an export generated at t.
func CSVFilename(t time.Time) string {
	return fmt.Sprintf("expenses_%s.csv", t.UTC().Format("2006-01-02"))
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
