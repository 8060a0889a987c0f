package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyline/opsboard/internal/config"
	gormModels "skyline/opsboard/internal/models/gorm"
)

func TestInitORM_SQLite(t *testing.T) {
	orm, err := InitORM(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(orm))
	for _, model := range gormModels.All() {
		assert.True(t, orm.Migrator().HasTable(model))
	}
}

func TestInitSQLX_SQLiteSharesORMConnection(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"}
	orm, err := InitORM(cfg)
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(orm))

	x, err := InitSQLX(cfg, orm)
	require.NoError(t, err)
	require.NoError(t, orm.Create(&gormModels.Customer{Name: "Acme", Source: "imported", IsActive: true}).Error)

	var n int
	require.NoError(t, x.Get(&n, "SELECT COUNT(*) FROM customers"))
	assert.Equal(t, 1, n)
}
