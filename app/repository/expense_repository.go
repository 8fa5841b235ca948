package repository

import (
	"github.com/pennywiseapp/pennywise/app/models"
	"gorm.io/gorm"
)

// expenseRepository implements the ExpenseRepository interface
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository instance
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

// Create creates a new expense in the database
func (r *expenseRepository) Create(expense *models.Expense) error {
	return r.db.Create(expense).Error
}

// GetByUUID retrieves one of the user's expenses by public identifier
func (r *expenseRepository) GetByUUID(userID uint, uuid string) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.Where("user_id = ? AND uuid = ?", userID, uuid).First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListByUser returns the user's expenses, newest date first
func (r *expenseRepository) ListByUser(userID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

// Update saves changes to an existing expense
func (r *expenseRepository) Update(expense *models.Expense) error {
	return r.db.Save(expense).Error
}

// Delete soft-deletes one of the user's expenses
func (r *expenseRepository) Delete(userID uint, uuid string) error {
	return r.db.Where("user_id = ? AND uuid = ?", userID, uuid).
		Delete(&models.Expense{}).Error
}

// CountByUser returns the number of expenses recorded by the user
func (r *expenseRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Expense{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
