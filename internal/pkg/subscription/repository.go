package subscription

import (
	"time"

	"github.com/pennywiseapp/pennywise/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the subscription service.
type Repository interface {
	ListByUser(userID uint) ([]models.Subscription, error)
	Get(id uint) (*models.Subscription, error)
	Create(sub *models.Subscription) error
	UpdatePlan(subscriptionID, planID uint) error
	DeleteOthers(userID, keepID uint) (int64, error)
	GetPlanByName(name string) (*models.Plan, error)
	GetPlanByID(id uint) (*models.Plan, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// ListByUser returns all subscription rows for a user, earliest first. The
// ordering is load-bearing: the first row is the canonical one during
// duplicate cleanup.
func (r *gormRepository) ListByUser(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) Get(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) UpdatePlan(subscriptionID, planID uint) error {
	return r.db.Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"plan_id":    planID,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormRepository) DeleteOthers(userID, keepID uint) (int64, error) {
	tx := r.db.Where("user_id = ? AND id <> ?", userID, keepID).
		Delete(&models.Subscription{})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) GetPlanByName(name string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetPlanByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}
