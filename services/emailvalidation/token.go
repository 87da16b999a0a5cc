package emailvalidation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Token is a single-use email validation credential. Superseded tokens are
// soft deleted through DeletedAt and never removed; Validated is independent
// of DeletedAt and is never reset once set.
type Token struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:char(36);index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	Validated   bool           `json:"validated" gorm:"not null;default:false"`
	ValidatedAt *time.Time     `json:"validated_at,omitempty"`
}

func (Token) TableName() string {
	return "email_validation_tokens"
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// NewToken returns an active, unvalidated token with a fresh id.
func NewToken(ownerID uuid.UUID, now time.Time) *Token {
	return &Token{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
	}
}

func (t *Token) IsSuperseded() bool {
	return t.DeletedAt.Valid
}

func (t *Token) supersede(now time.Time) {
	if !t.DeletedAt.Valid {
		t.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	}
}

func (t *Token) markValidated(now time.Time) bool {
	if t.Validated {
		return false
	}
	t.Validated = true
	t.ValidatedAt = &now
	return true
}
