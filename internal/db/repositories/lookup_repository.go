package repositories

import (
	"context"
	"fmt"

	gormModels "skyline/opsboard/internal/models/gorm"

	"gorm.io/gorm"
)

// LookupRepository reads the reference tables aircraft rows point at.
type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func (r *LookupRepository) ListModels(ctx context.Context) ([]gormModels.AircraftModel, error) {
	var models []gormModels.AircraftModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft models: %w", err)
	}
	return models, nil
}

func (r *LookupRepository) ListEngineTypes(ctx context.Context) ([]gormModels.EngineType, error) {
	var engineTypes []gormModels.EngineType
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&engineTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch engine types: %w", err)
	}
	return engineTypes, nil
}
