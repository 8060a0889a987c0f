package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "skyline/opsboard/internal/models/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(gormModels.All()...))
	return db
}

func TestImportLogReader_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	writer := NewImportLogRepo(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{"customer", "aircraft", "customer"} {
		require.NoError(t, writer.Record(ctx, &gormModels.ImportLog{
			ImportedAt: base.Add(time.Duration(i) * time.Minute),
			DataType:   kind,
			Source:     "api",
			Format:     "csv",
			ImportedBy: "u1",
			Status:     "success",
			Warnings:   "[]",
			Errors:     "[]",
		}))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	reader := NewImportLogReader(sqlx.NewDb(sqlDB, "sqlite3"))

	all, err := reader.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].ImportedAt.After(all[1].ImportedAt))
	assert.NotEmpty(t, all[0].ID)

	customers, err := reader.List(ctx, "customer", 1)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "customer", customers[0].DataType)
	assert.True(t, customers[0].ImportedAt.Equal(base.Add(2*time.Minute)))
}
