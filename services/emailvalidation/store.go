package emailvalidation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenStore persists tokens. FindByID and ExistsValidatedForOwner also see
// superseded tokens; FindByID returns (nil, nil) when no token matches.
// FindActiveByOwner returns only tokens that are not superseded.
type TokenStore interface {
	FindByID(tokenID uuid.UUID) (*Token, error)
	FindActiveByOwner(ownerID uuid.UUID) ([]Token, error)
	ExistsValidatedForOwner(ownerID uuid.UUID) (bool, error)
	Insert(token *Token) error
	Update(token *Token) error
	Transaction(fn func(store TokenStore) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByID(tokenID uuid.UUID) (*Token, error) {
	var token Token
	if err := s.db.Unscoped().Where("id = ?", tokenID).Take(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find email validation token: %w", err)
	}
	return &token, nil
}

func (s *GormStore) FindActiveByOwner(ownerID uuid.UUID) ([]Token, error) {
	var tokens []Token
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at").Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to list active email validation tokens: %w", err)
	}
	return tokens, nil
}

func (s *GormStore) ExistsValidatedForOwner(ownerID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Unscoped().
		Model(&Token{}).
		Where("owner_id = ? AND validated = ?", ownerID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count validated email validation tokens: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) Insert(token *Token) error {
	if err := s.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to create email validation token: %w", err)
	}
	return nil
}

// Update writes the mutable fields of token. Superseded tokens are still
// updatable so a redeemed-after-supersede token keeps its flag.
func (s *GormStore) Update(token *Token) error {
	result := s.db.Unscoped().
		Model(&Token{}).
		Where("id = ?", token.ID).
		Updates(map[string]any{
			"deleted_at":   token.DeletedAt,
			"validated":    token.Validated,
			"validated_at": token.ValidatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update email validation token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: email validation token %s", ErrNotFound, token.ID)
	}
	return nil
}

func (s *GormStore) Transaction(fn func(store TokenStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
