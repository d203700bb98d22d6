// Package dbtest opens a migrated in-memory database for tests.
package dbtest

import (
	"testing"

	"storefront/internal/db"

	"github.com/glebarez/sqlite"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated SQLite database private to the test. When seed is
// true the demo catalog is inserted, so product 1 is the 2499.99 chronograph.
func Open(t testing.TB, seed bool) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log, _ := logrustest.NewNullLogger()
	require.NoError(t, db.Migrate(gdb, log))
	if seed {
		_, err := db.SeedProducts(gdb, log)
		require.NoError(t, err)
	}
	return gdb
}
