package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/db/repositories"
	"skyline/opsboard/internal/logging"
	"skyline/opsboard/internal/matching"
	"skyline/opsboard/internal/metrics"
	"skyline/opsboard/internal/parsers"
	"skyline/opsboard/internal/reconcile"
)

var (
	ErrUnknownKind       = errors.New("unknown entity kind")
	ErrUnsupportedFormat = errors.New("unsupported import format")
	ErrMissingUser       = errors.New("missing user id")
	ErrInvalidPreview    = errors.New("invalid validation preview")
	ErrCommitBlocked     = errors.New("import has blocking errors")
	ErrCommitFailed      = errors.New("import commit failed")

	ErrRuleNotFound = repositories.ErrRuleNotFound
)

// ImportInput is one validate or commit call, whichever channel it came
// through. The commit-only fields are ignored by validate.
type ImportInput struct {
	Kind          constants.EntityKind
	Format        constants.Format
	Content       []byte
	ConflictMode  constants.ConflictMode
	DefaultSource constants.TrustSource

	Channel           constants.ImportChannel
	FileName          *string
	UserID            string
	OverrideConflicts bool
	Preview           json.RawMessage
	TrustPreview      bool
}

func (in ImportInput) check() error {
	if in.Kind != constants.KindCustomer && in.Kind != constants.KindAircraft {
		return fmt.Errorf("%w: %q", ErrUnknownKind, in.Kind)
	}
	if _, ok := constants.ParseFormat(string(in.Format)); !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, in.Format)
	}
	return nil
}

// ImportService runs reference data imports: snapshot the store, validate
// the batch against it and, on commit, write the outcome in one transaction.
type ImportService struct {
	db        *gorm.DB
	customers *repositories.CustomerRepository
	aircraft  *repositories.AircraftRepository
	lookups   *repositories.LookupRepository
	logs      *repositories.ImportLogRepo
	rules     *MappingRuleService
	matcher   *matching.Matcher
	mode      constants.ConflictMode
	metrics   *metrics.MetricsRegistry
}

func NewImportService(db *gorm.DB, rules *MappingRuleService, cfg *config.Config, m *metrics.MetricsRegistry) *ImportService {
	mode := cfg.ConflictMode
	if _, ok := constants.ParseConflictMode(string(mode)); !ok {
		mode = constants.ConflictWarn
	}
	return &ImportService{
		db:        db,
		customers: repositories.NewCustomerRepository(db),
		aircraft:  repositories.NewAircraftRepository(db),
		lookups:   repositories.NewLookupRepository(db),
		logs:      repositories.NewImportLogRepo(db),
		rules:     rules,
		matcher:   matching.NewMatcher(cfg.FuzzyMatchThreshold),
		mode:      mode,
		metrics:   m,
	}
}

func (s *ImportService) conflictMode(in ImportInput) constants.ConflictMode {
	if mode, ok := constants.ParseConflictMode(string(in.ConflictMode)); ok {
		return mode
	}
	return s.mode
}

func parseOptions(in ImportInput) parsers.Options {
	return parsers.Options{DefaultSource: in.DefaultSource}
}

// Validate dispatches on the entity kind. The result is a CustomerResult or
// an AircraftResult.
func (s *ImportService) Validate(ctx context.Context, in ImportInput) (interface{}, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	if in.Kind == constants.KindAircraft {
		return s.ValidateAircraft(ctx, in)
	}
	return s.ValidateCustomers(ctx, in)
}

// ValidateCustomers parses and validates a customer batch without writing.
func (s *ImportService) ValidateCustomers(ctx context.Context, in ImportInput) (reconcile.CustomerResult, error) {
	start := time.Now()

	snap, err := s.customerSnapshot(ctx)
	if err != nil {
		return reconcile.CustomerResult{}, err
	}
	parsed := parsers.ParseCustomers(in.Content, in.Format, parseOptions(in))
	res := reconcile.NewValidator(s.matcher, nil).ValidateCustomers(parsed, snap, s.conflictMode(in))

	s.observeValidation(constants.KindCustomer, res.Summary, start)
	logging.WithImport(string(constants.KindCustomer), string(in.Format), string(in.Channel)).Infow("Import validated",
		"total", res.Summary.Total,
		"to_add", res.Summary.ToAdd,
		"to_update", res.Summary.ToUpdate,
		"conflicts", res.Summary.Conflicts,
		"errors", len(res.Details.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ValidateAircraft parses and validates an aircraft batch without writing.
func (s *ImportService) ValidateAircraft(ctx context.Context, in ImportInput) (reconcile.AircraftResult, error) {
	start := time.Now()

	snap, err := s.aircraftSnapshot(ctx)
	if err != nil {
		return reconcile.AircraftResult{}, err
	}
	canon, err := s.rules.Canonicalizer(ctx)
	if err != nil {
		return reconcile.AircraftResult{}, err
	}
	parsed := parsers.ParseAircraft(in.Content, in.Format, parseOptions(in))
	res := reconcile.NewValidator(s.matcher, canon).ValidateAircraft(parsed, snap, s.conflictMode(in))

	for _, fm := range res.Details.FuzzyMatches {
		s.metrics.FuzzyMatchConfidence.Observe(float64(fm.Confidence))
	}
	s.observeValidation(constants.KindAircraft, res.Summary, start)
	logging.WithImport(string(constants.KindAircraft), string(in.Format), string(in.Channel)).Infow("Import validated",
		"total", res.Summary.Total,
		"to_add", res.Summary.ToAdd,
		"to_update", res.Summary.ToUpdate,
		"conflicts", res.Summary.Conflicts,
		"invalid_operators", *res.Summary.InvalidOperators,
		"errors", len(res.Details.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (s *ImportService) customerSnapshot(ctx context.Context) (reconcile.CustomerSnapshot, error) {
	customers, err := s.customers.ListAll(ctx)
	if err != nil {
		return reconcile.CustomerSnapshot{}, err
	}
	return reconcile.CustomerSnapshot{Customers: customers}, nil
}

func (s *ImportService) aircraftSnapshot(ctx context.Context) (reconcile.AircraftSnapshot, error) {
	var (
		snap reconcile.AircraftSnapshot
		err  error
	)
	if snap.Aircraft, err = s.aircraft.ListAll(ctx); err != nil {
		return snap, err
	}
	if snap.Customers, err = s.customers.ListAll(ctx); err != nil {
		return snap, err
	}
	if snap.Models, err = s.lookups.ListModels(ctx); err != nil {
		return snap, err
	}
	if snap.EngineTypes, err = s.lookups.ListEngineTypes(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *ImportService) observeValidation(kind constants.EntityKind, sum reconcile.Summary, start time.Time) {
	k := string(kind)
	s.metrics.ImportRecordsTotal.WithLabelValues(k, "add").Add(float64(sum.ToAdd))
	s.metrics.ImportRecordsTotal.WithLabelValues(k, "update").Add(float64(sum.ToUpdate))
	s.metrics.ImportRecordsTotal.WithLabelValues(k, "conflict").Add(float64(sum.Conflicts))
	s.metrics.ImportRecordsTotal.WithLabelValues(k, "unchanged").Add(float64(sum.Unchanged))
	s.metrics.ImportRecordsTotal.WithLabelValues(k, "skipped").Add(float64(sum.Skipped))
	s.metrics.ImportDuration.WithLabelValues(k, "validate").Observe(time.Since(start).Seconds())
}

// trustLevel names the tier recorded on the audit row.
func trustLevel(in ImportInput) string {
	if in.DefaultSource.Importable() {
		return string(in.DefaultSource)
	}
	return string(constants.SourceImported)
}

func encodeMessages(msgs []string) string {
	if msgs == nil {
		msgs = []string{}
	}
	data, _ := json.Marshal(msgs)
	return string(data)
}
