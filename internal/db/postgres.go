package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"skyline/opsboard/internal/config"
)

// InitSQLX opens the raw SQL handle used for read-only reporting queries.
// On postgres it dials its own pool with retries; on sqlite it shares the
// GORM connection so both see the same file.
func InitSQLX(cfg *config.Config, orm *gorm.DB) (*sqlx.DB, error) {
	if cfg.DBDriver == "sqlite" {
		sqlDB, err := orm.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), nil
	}

	var err error
	for i := 0; i < 10; i++ {
		var conn *sqlx.DB
		if conn, err = sqlx.Connect("postgres", cfg.PostgresDSN()); err == nil {
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres: %w", err)
}
