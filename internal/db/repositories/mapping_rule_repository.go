package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "skyline/opsboard/internal/models/gorm"

	"gorm.io/gorm"
)

var ErrRuleNotFound = errors.New("mapping rule not found")

type MappingRuleRepository struct {
	db *gorm.DB
}

// NewMappingRuleRepository creates a new GORM-based aircraft type mapping repository
func NewMappingRuleRepository(db *gorm.DB) *MappingRuleRepository {
	return &MappingRuleRepository{db: db}
}

// List returns rules in insertion order, optionally only active ones
func (r *MappingRuleRepository) List(ctx context.Context, activeOnly bool) ([]gormModels.AircraftTypeMapping, error) {
	var rules []gormModels.AircraftTypeMapping

	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch mapping rules: %w", err)
	}

	return rules, nil
}

func (r *MappingRuleRepository) Get(ctx context.Context, id uint) (*gormModels.AircraftTypeMapping, error) {
	var rule gormModels.AircraftTypeMapping

	err := r.db.WithContext(ctx).First(&rule, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrRuleNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch mapping rule: %w", err)
	}

	return &rule, nil
}

func (r *MappingRuleRepository) Create(ctx context.Context, rule *gormModels.AircraftTypeMapping) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create mapping rule: %w", err)
	}
	return nil
}

// Update overwrites the editable fields, zero values included
func (r *MappingRuleRepository) Update(ctx context.Context, rule *gormModels.AircraftTypeMapping) error {
	res := r.db.WithContext(ctx).
		Model(rule).
		Select("pattern", "canonical_type", "priority", "is_active", "description", "updated_at").
		Updates(rule)
	if res.Error != nil {
		return fmt.Errorf("failed to update mapping rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, rule.ID)
	}
	return nil
}

func (r *MappingRuleRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&gormModels.AircraftTypeMapping{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete mapping rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, id)
	}
	return nil
}

// ReplaceAll swaps the whole table for rules in one transaction. Rules get
// fresh ids in slice order.
func (r *MappingRuleRepository) ReplaceAll(ctx context.Context, rules []gormModels.AircraftTypeMapping) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&gormModels.AircraftTypeMapping{}).Error; err != nil {
			return fmt.Errorf("failed to clear mapping rules: %w", err)
		}
		for i := range rules {
			rules[i].ID = 0
			if err := tx.Create(&rules[i]).Error; err != nil {
				return fmt.Errorf("failed to insert mapping rule %q: %w", rules[i].Pattern, err)
			}
		}
		return nil
	})
}
