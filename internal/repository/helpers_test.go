package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := NewDB(DriverSQLite, filepath.Join(t.TempDir(), "test.db"), logger.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// SQLite allows one writer; a single connection serializes concurrent callers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }
