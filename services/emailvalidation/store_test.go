package emailvalidation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/mailcheck/testutils"
	"gorm.io/gorm"
)

func TestGormStore(t *testing.T) {
	owner := testutils.TestUsers.Alice.ID

	newStore := func(t *testing.T) (*GormStore, *gorm.DB) {
		db := testutils.SetupTestDB(t, &Token{})
		return NewGormStore(db), db
	}

	t.Run("insert and find by id", func(t *testing.T) {
		store, _ := newStore(t)
		token := NewToken(owner, time.Now())

		require.NoError(t, store.Insert(token))

		found, err := store.FindByID(token.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, token.ID, found.ID)
		assert.Equal(t, owner, found.OwnerID)
		assert.False(t, found.Validated)
	})

	t.Run("insert generates missing id", func(t *testing.T) {
		store, _ := newStore(t)
		token := &Token{OwnerID: owner}

		require.NoError(t, store.Insert(token))

		assert.NotEqual(t, uuid.Nil, token.ID)
	})

	t.Run("find unknown id returns nil", func(t *testing.T) {
		store, _ := newStore(t)

		found, err := store.FindByID(uuid.New())

		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("find by id includes superseded tokens", func(t *testing.T) {
		store, _ := newStore(t)
		token := NewToken(owner, time.Now())
		require.NoError(t, store.Insert(token))

		token.supersede(time.Now())
		require.NoError(t, store.Update(token))

		found, err := store.FindByID(token.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsSuperseded())
	})

	t.Run("find active by owner skips superseded and other owners", func(t *testing.T) {
		store, _ := newStore(t)
		active := NewToken(owner, time.Now())
		superseded := NewToken(owner, time.Now())
		other := NewToken(testutils.TestUsers.Bob.ID, time.Now())
		for _, token := range []*Token{active, superseded, other} {
			require.NoError(t, store.Insert(token))
		}
		superseded.supersede(time.Now())
		require.NoError(t, store.Update(superseded))

		tokens, err := store.FindActiveByOwner(owner)

		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Equal(t, active.ID, tokens[0].ID)
	})

	t.Run("update persists validation on superseded token", func(t *testing.T) {
		store, _ := newStore(t)
		token := NewToken(owner, time.Now())
		require.NoError(t, store.Insert(token))
		token.supersede(time.Now())
		require.NoError(t, store.Update(token))

		token.markValidated(time.Now())
		require.NoError(t, store.Update(token))

		found, err := store.FindByID(token.ID)
		require.NoError(t, err)
		assert.True(t, found.Validated)
		assert.NotNil(t, found.ValidatedAt)
		assert.True(t, found.IsSuperseded())
	})

	t.Run("update of unknown token", func(t *testing.T) {
		store, _ := newStore(t)

		err := store.Update(NewToken(owner, time.Now()))

		testutils.AssertErrorType(t, ErrNotFound, err)
	})

	t.Run("exists validated for owner", func(t *testing.T) {
		store, _ := newStore(t)
		token := NewToken(owner, time.Now())
		require.NoError(t, store.Insert(token))

		exists, err := store.ExistsValidatedForOwner(owner)
		require.NoError(t, err)
		assert.False(t, exists)

		token.markValidated(time.Now())
		token.supersede(time.Now())
		require.NoError(t, store.Update(token))

		exists, err = store.ExistsValidatedForOwner(owner)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		store, db := newStore(t)
		token := NewToken(owner, time.Now())

		err := store.Transaction(func(tx TokenStore) error {
			require.NoError(t, tx.Insert(token))
			return assertErr
		})

		assert.ErrorIs(t, err, assertErr)

		var count int64
		require.NoError(t, db.Unscoped().Model(&Token{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("transaction commits on success", func(t *testing.T) {
		store, _ := newStore(t)
		token := NewToken(owner, time.Now())

		err := store.Transaction(func(tx TokenStore) error {
			return tx.Insert(token)
		})
		require.NoError(t, err)

		found, err := store.FindByID(token.ID)
		require.NoError(t, err)
		assert.NotNil(t, found)
	})
}

func TestToken(t *testing.T) {
	t.Run("table name", func(t *testing.T) {
		assert.Equal(t, "email_validation_tokens", Token{}.TableName())
	})

	t.Run("supersede keeps the first timestamp", func(t *testing.T) {
		token := NewToken(uuid.New(), time.Now())
		first := time.Now().Add(-time.Minute)

		token.supersede(first)
		token.supersede(time.Now())

		assert.True(t, token.DeletedAt.Time.Equal(first))
	})

	t.Run("markValidated reports the first transition only", func(t *testing.T) {
		token := NewToken(uuid.New(), time.Now())

		assert.True(t, token.markValidated(time.Now()))
		assert.False(t, token.markValidated(time.Now()))
		assert.True(t, token.Validated)
	})
}
