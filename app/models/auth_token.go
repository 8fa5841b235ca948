package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AuthToken is a bearer credential issued at login. Only the SHA-256 hash is
// stored; the raw secret is returned to the client exactly once.
type AuthToken struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	TokenHash  string         `gorm:"type:char(64);uniqueIndex" json:"-"`
	Prefix     string         `gorm:"type:varchar(20);default:''" json:"prefix"`
	ExpiresAt  time.Time      `json:"expires_at"`
	LastUsedAt *time.Time     `json:"last_used_at"`
	RevokedAt  *time.Time     `json:"-"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"-"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const tokenPrefix = "pw_"

// TokenLifetime is how long an issued bearer token stays valid.
const TokenLifetime = 30 * 24 * time.Hour

// IssueAuthToken generates a new bearer token for the user and returns the
// record together with the raw secret. Callers must persist the record.
func IssueAuthToken(userID uint) (*AuthToken, string, error) {
	rawToken, prefix, hash, err := generateTokenMaterial()
	if err != nil {
		return nil, "", err
	}
	token := &AuthToken{
		UserID:    userID,
		TokenHash: hash,
		Prefix:    prefix,
		ExpiresAt: time.Now().Add(TokenLifetime),
	}
	return token, rawToken, nil
}

// IsValid reports whether the token is neither revoked nor expired.
func (t *AuthToken) IsValid() bool {
	if t == nil || t.RevokedAt != nil {
		return false
	}
	return time.Now().Before(t.ExpiresAt)
}

// Revoke marks the token as unusable without deleting the record.
func (t *AuthToken) Revoke() {
	now := time.Now()
	t.RevokedAt = &now
}

// TouchUsage updates the last-used timestamp metadata.
func (t *AuthToken) TouchUsage() {
	now := time.Now()
	t.LastUsedAt = &now
}

// HashToken returns the SHA-256 hash for the provided bearer token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func generateTokenMaterial() (string, string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", err
	}
	encoded := strings.ToLower(tokenEncoding.EncodeToString(b))
	rawToken := tokenPrefix + encoded
	if len(rawToken) < 12 {
		return "", "", "", fmt.Errorf("token generation failed: token too short")
	}
	prefix := rawToken[:min(len(rawToken), 16)]
	hash := HashToken(rawToken)
	return rawToken, prefix, hash, nil
}
