package repository

import (
	"strings"
	"time"

	"github.com/pennywiseapp/pennywise/app/models"
	"gorm.io/gorm"
)

// tokenRepository implements the TokenRepository interface
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *models.AuthToken) error {
	return r.db.Create(token).Error
}

func (r *tokenRepository) GetByID(id uint) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.First(&token, id).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// GetByHash resolves a non-revoked token hash to its record. Expiry is
// checked by the caller via AuthToken.IsValid.
func (r *tokenRepository) GetByHash(hash string) (*models.AuthToken, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var token models.AuthToken
	err := r.db.Where("token_hash = ? AND revoked_at IS NULL", trimmed).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) Save(token *models.AuthToken) error {
	return r.db.Save(token).Error
}

// TouchUsage refreshes the last-used timestamp best-effort.
func (r *tokenRepository) TouchUsage(id uint) error {
	return r.db.Model(&models.AuthToken{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}
