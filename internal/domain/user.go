package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is the store-level miss. It must not leak past the
	// service layer, where it is translated to a validation or
	// authentication failure.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail reports a unique-index violation on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string    `gorm:"size:255" json:"name"`
	PasswordHash string    `gorm:"size:191;not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail lowercases an address so lookups and the uniqueness
// constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, offset, limit int, q string) ([]User, int64, error)
}
