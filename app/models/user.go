package models

import (
	"regexp"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

const (
	NameMinLength     = 2
	NameMaxLength     = 50
	PasswordMinLength = 8
	PasswordMaxLength = 128
	EmailMaxLength    = 255
)

// Allowed characters: letters, numbers, spaces, hyphens, underscores
var nameRegexp = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=50"`
	Email       string         `gorm:"uniqueIndex;type:varchar(255) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,max=255"`
	Password    string         `gorm:"type:text" json:"-" validate:"required,min=8"`
	Status      string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	LastLoginAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`

	// Export usage counters, incremented in Redis and flushed in batches.
	CSVExportCount uint `gorm:"default:0" json:"csv_export_count"`
	PDFExportCount uint `gorm:"default:0" json:"pdf_export_count"`

	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Status:   STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// IsValidName checks length and the allowed character set for display names.
func IsValidName(name string) bool {
	if len(name) < NameMinLength || len(name) > NameMaxLength {
		return false
	}
	return nameRegexp.MatchString(name)
}

// PasswordMeetsPolicy enforces length bounds plus at least one letter and one digit.
func PasswordMeetsPolicy(password string) bool {
	if len(password) < PasswordMinLength || len(password) > PasswordMaxLength {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
