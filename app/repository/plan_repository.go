package repository

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/internal/pkg/cache"
)

const (
	planCacheKey        = "catalog:plans"
	planCacheExpiration = 30 * time.Minute
)

// planRepository implements the PlanRepository interface. The catalog is
// immutable at runtime, so list reads go through the cache.
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetByName retrieves a plan by its unique short key (free/pro/business)
func (r *planRepository) GetByName(name string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("name = ?", name).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// List returns all plans sorted by price ascending
func (r *planRepository) List() ([]models.Plan, error) {
	if cached, err := cache.Get(planCacheKey); err == nil {
		var plans []models.Plan
		if err := json.Unmarshal([]byte(cached), &plans); err == nil {
			return plans, nil
		}
	}

	var plans []models.Plan
	if err := r.db.Order("price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}

	if b, err := json.Marshal(plans); err == nil {
		if err := cache.Set(planCacheKey, string(b), planCacheExpiration); err != nil {
			log.Warnf("[PlanRepository] failed to cache catalog: %v", err)
		}
	}

	return plans, nil
}
