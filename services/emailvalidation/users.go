package emailvalidation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the read-only view of an account that owns validation tokens.
type User struct {
	ID    uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// UserLookup resolves token owners. Implementations return an error wrapping
// ErrNotFound for unknown owners.
type UserLookup interface {
	FindUser(ownerID uuid.UUID) (*User, error)
}

// GormUserLookup reads owners from an existing users table managed elsewhere.
type GormUserLookup struct {
	db    *gorm.DB
	table string
}

func NewGormUserLookup(db *gorm.DB, table string) *GormUserLookup {
	if table == "" {
		table = "users"
	}
	return &GormUserLookup{db: db, table: table}
}

func (l *GormUserLookup) FindUser(ownerID uuid.UUID) (*User, error) {
	var user User
	err := l.db.Table(l.table).
		Select("id", "email", "name").
		Where("id = ?", ownerID).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, ownerID)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
