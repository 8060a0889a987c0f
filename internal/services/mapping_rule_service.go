package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"skyline/opsboard/internal/canonical"
	"skyline/opsboard/internal/common"
	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/db/repositories"
	"skyline/opsboard/internal/logging"
	"skyline/opsboard/internal/metrics"
	gormModels "skyline/opsboard/internal/models/gorm"
)

var rulesCacheKey = string(constants.CachePrefixMappingRules)

// MappingRuleService administers the aircraft type mapping table and hands
// out canonicalizers built from a cached snapshot of its active rules.
type MappingRuleService struct {
	rules     *repositories.MappingRuleRepository
	aircraft  *repositories.AircraftRepository
	cache     common.CacheInterface
	ttl       time.Duration
	exactMark int
	metrics   *metrics.MetricsRegistry
	loads     singleflight.Group
}

func NewMappingRuleService(db *gorm.DB, cache common.CacheInterface, cfg *config.Config, m *metrics.MetricsRegistry) *MappingRuleService {
	return &MappingRuleService{
		rules:     repositories.NewMappingRuleRepository(db),
		aircraft:  repositories.NewAircraftRepository(db),
		cache:     cache,
		ttl:       cfg.RuleCacheTTL,
		exactMark: cfg.ExactPriorityMark,
		metrics:   m,
	}
}

// ActiveRules returns the active rules in evaluation order. Concurrent
// cache misses share one store read.
func (s *MappingRuleService) ActiveRules(ctx context.Context) (canonical.SortedRules, error) {
	if cached, ok := s.cache.Get(rulesCacheKey); ok {
		if raw, isString := cached.(string); isString {
			var rules []canonical.Rule
			if err := json.Unmarshal([]byte(raw), &rules); err == nil {
				s.metrics.CacheHitsTotal.WithLabelValues(rulesCacheKey).Inc()
				return sortRules(rules), nil
			}
		}
		s.cache.Delete(rulesCacheKey)
	}
	s.metrics.CacheMissesTotal.WithLabelValues(rulesCacheKey).Inc()

	v, err, _ := s.loads.Do(rulesCacheKey, func() (interface{}, error) {
		rows, err := s.rules.List(ctx, true)
		if err != nil {
			return nil, err
		}
		rules := make([]canonical.Rule, 0, len(rows))
		for _, row := range rows {
			rules = append(rules, toRule(row))
		}
		if data, err := json.Marshal(rules); err == nil {
			s.cache.Set(rulesCacheKey, string(data), s.ttl)
		}
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return sortRules(v.([]canonical.Rule)), nil
}

func sortRules(rules []canonical.Rule) canonical.SortedRules {
	sorted, skipped := canonical.SortRules(rules)
	for _, r := range skipped {
		logging.Warn("Skipping mapping rule that does not compile", "rule_id", r.ID, "pattern", r.Pattern)
	}
	return sorted
}

// Canonicalizer builds a canonicalizer over the current rule snapshot.
func (s *MappingRuleService) Canonicalizer(ctx context.Context) (*canonical.Canonicalizer, error) {
	rules, err := s.ActiveRules(ctx)
	if err != nil {
		return nil, err
	}
	return canonical.New(rules, s.exactMark), nil
}

// Refresh drops the cached rule table and loads it again. It returns the
// number of active rules that compiled.
func (s *MappingRuleService) Refresh(ctx context.Context) (int, error) {
	s.invalidate()
	rules, err := s.ActiveRules(ctx)
	if err != nil {
		return 0, err
	}
	return len(rules), nil
}

func (s *MappingRuleService) invalidate() {
	s.cache.Delete(rulesCacheKey)
	s.loads.Forget(rulesCacheKey)
}

// List returns every rule, inactive ones included, in insertion order.
func (s *MappingRuleService) List(ctx context.Context) ([]gormModels.AircraftTypeMapping, error) {
	return s.rules.List(ctx, false)
}

func (s *MappingRuleService) Create(ctx context.Context, rule canonical.Rule) (*gormModels.AircraftTypeMapping, error) {
	if err := canonical.ValidateRule(rule); err != nil {
		return nil, err
	}
	row := fromRule(rule)
	if err := s.rules.Create(ctx, &row); err != nil {
		return nil, err
	}
	s.invalidate()
	logging.Info("Mapping rule created", "rule_id", row.ID, "pattern", row.Pattern, "canonical_type", row.CanonicalType)
	return &row, nil
}

func (s *MappingRuleService) Update(ctx context.Context, id uint, rule canonical.Rule) (*gormModels.AircraftTypeMapping, error) {
	if err := canonical.ValidateRule(rule); err != nil {
		return nil, err
	}
	existing, err := s.rules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row := fromRule(rule)
	row.ID = id
	row.CreatedAt = existing.CreatedAt
	if err := s.rules.Update(ctx, &row); err != nil {
		return nil, err
	}
	s.invalidate()
	logging.Info("Mapping rule updated", "rule_id", id, "pattern", row.Pattern, "canonical_type", row.CanonicalType)
	return &row, nil
}

func (s *MappingRuleService) Delete(ctx context.Context, id uint) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	logging.Info("Mapping rule deleted", "rule_id", id)
	return nil
}

// ResetToDefaults replaces the whole table with the embedded seed rules and
// returns how many were written.
func (s *MappingRuleService) ResetToDefaults(ctx context.Context) (int, error) {
	defaults, err := canonical.DefaultRules()
	if err != nil {
		return 0, err
	}
	rows := make([]gormModels.AircraftTypeMapping, 0, len(defaults))
	for _, r := range defaults {
		rows = append(rows, fromRule(r))
	}
	if err := s.rules.ReplaceAll(ctx, rows); err != nil {
		return 0, err
	}
	s.invalidate()
	logging.Info("Mapping rules reset to defaults", "rules", len(rows))
	return len(rows), nil
}

// Canonicalize answers the standalone "what would this resolve to" query.
func (s *MappingRuleService) Canonicalize(ctx context.Context, rawType, registration string) (canonical.Result, error) {
	c, err := s.Canonicalizer(ctx)
	if err != nil {
		return canonical.Result{}, err
	}
	res := c.Canonicalize(rawType, registration)
	s.metrics.CanonicalizationTotal.WithLabelValues(string(res.Confidence)).Inc()
	return res, nil
}

// Backfill recomputes the canonical type of every stored aircraft against
// the current rules. It returns how many aircraft were scanned and changed.
func (s *MappingRuleService) Backfill(ctx context.Context) (int, int, error) {
	c, err := s.Canonicalizer(ctx)
	if err != nil {
		return 0, 0, err
	}
	all, err := s.aircraft.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	changed := map[uint]string{}
	for _, a := range all {
		res := c.Canonicalize(a.AircraftType, a.Registration)
		s.metrics.CanonicalizationTotal.WithLabelValues(string(res.Confidence)).Inc()
		if res.Canonical != a.CanonicalType {
			changed[a.ID] = res.Canonical
		}
	}
	if len(changed) > 0 {
		if err := s.aircraft.UpdateCanonicalTypes(ctx, changed); err != nil {
			return len(all), 0, fmt.Errorf("failed to backfill canonical types: %w", err)
		}
	}

	logging.Info("Canonical type backfill finished", "scanned", len(all), "changed", len(changed))
	return len(all), len(changed), nil
}

func toRule(m gormModels.AircraftTypeMapping) canonical.Rule {
	return canonical.Rule{
		ID:            m.ID,
		Pattern:       m.Pattern,
		CanonicalType: m.CanonicalType,
		Priority:      m.Priority,
		IsActive:      m.IsActive,
		Description:   m.Description,
	}
}

func fromRule(r canonical.Rule) gormModels.AircraftTypeMapping {
	return gormModels.AircraftTypeMapping{
		Pattern:       r.Pattern,
		CanonicalType: r.CanonicalType,
		Priority:      r.Priority,
		IsActive:      r.IsActive,
		Description:   r.Description,
	}
}
