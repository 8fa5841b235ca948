package repository

import (
	"time"

	"github.com/pennywiseapp/pennywise/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateLastLogin(id uint, at time.Time) error
}

// TokenRepository defines the interface for bearer token operations
type TokenRepository interface {
	Create(token *models.AuthToken) error
	GetByID(id uint) (*models.AuthToken, error)
	GetByHash(hash string) (*models.AuthToken, error)
	Save(token *models.AuthToken) error
	TouchUsage(id uint) error
}

// PlanRepository defines the interface for the plan catalog
type PlanRepository interface {
	GetByName(name string) (*models.Plan, error)
	List() ([]models.Plan, error)
}

// ExpenseRepository defines the interface for expense-related database operations
type ExpenseRepository interface {
	Create(expense *models.Expense) error
	GetByUUID(userID uint, uuid string) (*models.Expense, error)
	ListByUser(userID uint) ([]models.Expense, error)
	Update(expense *models.Expense) error
	Delete(userID uint, uuid string) error
	CountByUser(userID uint) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User    UserRepository
	Token   TokenRepository
	Plan    PlanRepository
	Expense ExpenseRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Token:   NewTokenRepository(db),
		Plan:    NewPlanRepository(db),
		Expense: NewExpenseRepository(db),
	}
}
