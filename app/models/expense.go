package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense categories shown in the dashboard and used for report grouping.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryEntertainment = "Entertainment"
	CategoryHealth        = "Health"
	CategoryShopping      = "Shopping"
	CategoryBills         = "Bills"
	CategoryOther         = "Other"
)

// ExpenseCategories lists all valid categories in display order.
var ExpenseCategories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryHealth,
	CategoryShopping,
	CategoryBills,
	CategoryOther,
}

type Expense struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	UUID      string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=1,max=200"`
	Amount    float64        `gorm:"type:decimal(10,2);not null" json:"amount" validate:"gt=0"`
	Date      time.Time      `gorm:"type:date;not null" json:"date"`
	Category  string         `gorm:"type:varchar(50);not null" json:"category" validate:"required"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Expense) Validate() error {
	v := validator.New()

	if err := v.Struct(e); err != nil {
		return err
	}
	if !IsValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// BeforeCreate assigns the public identifier.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	return nil
}

// IsValidCategory reports whether the category is one of the known set.
func IsValidCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

// NormalizeCategory maps user input onto the canonical category spelling.
// Returns false when the input matches no known category.
func NormalizeCategory(input string) (string, bool) {
	for _, c := range ExpenseCategories {
		if strings.EqualFold(c, strings.TrimSpace(input)) {
			return c, true
		}
	}
	return "", false
}
