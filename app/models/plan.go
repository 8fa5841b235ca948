package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PlanFree     = "free"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

// FeatureList stores the human-readable feature bullet points of a plan as a
// JSON array in a single text column.
type FeatureList []string

// Value implements driver.Valuer.
func (f FeatureList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (f *FeatureList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported type %T for FeatureList", value)
	}
}

// Plan is a pricing tier. The catalog is seeded at setup and treated as
// read-only at runtime.
type Plan struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"name" validate:"required,oneof=free pro business"`
	DisplayName  string      `gorm:"type:varchar(100);not null" json:"display_name" validate:"required"`
	Price        float64     `gorm:"type:decimal(10,2);not null;default:0" json:"price" validate:"gte=0"`
	Features     FeatureList `gorm:"type:text" json:"features"`
	CanExportCSV bool        `gorm:"default:false" json:"can_export_csv"`
	CanExportPDF bool        `gorm:"default:false" json:"can_export_pdf"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName keeps the table aligned with the original schema naming.
func (Plan) TableName() string {
	return "subscription_plans"
}

// DefaultPlans returns the seed catalog: exactly one free plan at price 0,
// and the two paid tiers with their export capabilities.
func DefaultPlans() []Plan {
	return []Plan{
		{
			Name:        PlanFree,
			DisplayName: "Free",
			Price:       0,
			Features: FeatureList{
				"Track unlimited expenses",
				"Monthly spending overview",
				"7 expense categories",
			},
		},
		{
			Name:        PlanPro,
			DisplayName: "Pro",
			Price:       4.99,
			Features: FeatureList{
				"Everything in Free",
				"Spending charts and trends",
				"PDF expense reports",
				"Email support",
			},
			CanExportPDF: true,
		},
		{
			Name:        PlanBusiness,
			DisplayName: "Business",
			Price:       14.99,
			Features: FeatureList{
				"Everything in Pro",
				"CSV export for accounting",
				"Priority support",
			},
			CanExportCSV: true,
			CanExportPDF: true,
		},
	}
}
