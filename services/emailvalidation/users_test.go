package emailvalidation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/mailcheck/testutils"
)

type account struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email    string
	Name     string
	Password string
}

func (account) TableName() string {
	return "accounts"
}

func TestGormUserLookup(t *testing.T) {
	db := testutils.SetupTestDB(t, &account{})
	id := uuid.New()
	require.NoError(t, db.Create(&account{ID: id, Email: "carol@example.com", Name: "Carol", Password: "hash"}).Error)

	lookup := NewGormUserLookup(db, "accounts")

	t.Run("finds an existing user", func(t *testing.T) {
		user, err := lookup.FindUser(id)

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "carol@example.com", user.Email)
		assert.Equal(t, "Carol", user.Name)
	})

	t.Run("unknown user", func(t *testing.T) {
		user, err := lookup.FindUser(uuid.New())

		assert.Nil(t, user)
		testutils.AssertErrorType(t, ErrNotFound, err)
	})

	t.Run("missing table", func(t *testing.T) {
		user, err := NewGormUserLookup(db, "missing").FindUser(id)

		assert.Nil(t, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("defaults to users table", func(t *testing.T) {
		assert.Equal(t, "users", NewGormUserLookup(db, "").table)
	})
}
