package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInvalidCategory marks an expense category outside the known set.
var ErrInvalidCategory = errors.New("invalid expense category")

// SeedDefaultPlans inserts the default plan catalog. Existing plans are left
// untouched so the catalog stays stable across restarts.
func SeedDefaultPlans(db *gorm.DB) error {
	for _, plan := range DefaultPlans() {
		var existing Plan
		err := db.Where("name = ?", plan.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p := plan
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
