package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database. The pool is limited
// to one connection so every query sees the same in-memory database.
func SetupTestDB(t *testing.T, models ...any) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if len(models) > 0 {
		err = db.AutoMigrate(models...)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func AssertErrorType(t *testing.T, expected error, actual error) {
	require.Error(t, actual)
	require.ErrorIs(t, actual, expected)
}
