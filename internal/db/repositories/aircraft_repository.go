package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "skyline/opsboard/internal/models/gorm"

	"gorm.io/gorm"
)

var aircraftWriteColumns = []string{
	"registration",
	"aircraft_type",
	"canonical_type",
	"model_id",
	"engine_type_id",
	"serial_number",
	"operator_id",
	"operator_raw",
	"operator_match_confidence",
	"sp_id",
	"guid",
	"source",
	"notes",
	"updated_at",
}

type AircraftRepository struct {
	db *gorm.DB
}

// NewAircraftRepository creates a new GORM-based aircraft repository
func NewAircraftRepository(db *gorm.DB) *AircraftRepository {
	return &AircraftRepository{db: db}
}

// WithTx binds the repository to an open transaction
func (r *AircraftRepository) WithTx(tx *gorm.DB) *AircraftRepository {
	return &AircraftRepository{db: tx}
}

// ListAll fetches every aircraft, inactive ones included, in id order
func (r *AircraftRepository) ListAll(ctx context.Context) ([]gormModels.Aircraft, error) {
	var aircraft []gormModels.Aircraft

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&aircraft).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft: %w", err)
	}

	return aircraft, nil
}

// CreateBatch inserts new aircraft
func (r *AircraftRepository) CreateBatch(ctx context.Context, aircraft []gormModels.Aircraft) error {
	for i := range aircraft {
		if err := r.db.WithContext(ctx).Omit("Operator").Create(&aircraft[i]).Error; err != nil {
			return fmt.Errorf("failed to create aircraft %q: %w", aircraft[i].Registration, err)
		}
	}
	return nil
}

// Update writes the import-owned columns of an existing aircraft
func (r *AircraftRepository) Update(ctx context.Context, aircraft *gormModels.Aircraft) error {
	err := r.db.WithContext(ctx).
		Model(aircraft).
		Select(aircraftWriteColumns).
		Updates(aircraft).Error

	if err != nil {
		return fmt.Errorf("failed to update aircraft %d: %w", aircraft.ID, err)
	}

	return nil
}

// UpdateCanonicalTypes rewrites canonical_type for the given aircraft ids
func (r *AircraftRepository) UpdateCanonicalTypes(ctx context.Context, types map[uint]string) error {
	if len(types) == 0 {
		return nil
	}

	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, canonicalType := range types {
			err := tx.Model(&gormModels.Aircraft{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"canonical_type": canonicalType,
					"updated_at":     now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update canonical type of aircraft %d: %w", id, err)
			}
		}
		return nil
	})
}
