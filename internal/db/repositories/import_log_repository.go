package repositories

import (
	"context"
	"fmt"

	"skyline/opsboard/internal/constants"
	gormModels "skyline/opsboard/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// ImportLogRepo appends audit rows. Rows are never updated.
type ImportLogRepo struct {
	db *gorm.DB
}

// NewImportLogRepo creates a new import log repository
func NewImportLogRepo(db *gorm.DB) *ImportLogRepo {
	return &ImportLogRepo{db: db}
}

// WithTx binds the repository to an open transaction
func (r *ImportLogRepo) WithTx(tx *gorm.DB) *ImportLogRepo {
	return &ImportLogRepo{db: tx}
}

// Record writes one audit row
func (r *ImportLogRepo) Record(ctx context.Context, entry *gormModels.ImportLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write import log: %w", err)
	}
	return nil
}

// ImportLogReader lists audit rows with plain SQL for the reporting endpoint.
type ImportLogReader struct {
	db *sqlx.DB
}

func NewImportLogReader(db *sqlx.DB) *ImportLogReader {
	return &ImportLogReader{db}
}

// List returns the newest rows first, filtered by data type when given
func (r *ImportLogReader) List(ctx context.Context, dataType string, limit int) ([]gormModels.ImportLog, error) {
	logs := []gormModels.ImportLog{}

	var err error
	if dataType == "" {
		err = r.db.SelectContext(ctx, &logs, constants.ListImportLogs, limit)
	} else {
		err = r.db.SelectContext(ctx, &logs, constants.ListImportLogsByType, dataType, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}

	return logs, nil
}
