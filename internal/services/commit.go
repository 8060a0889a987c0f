package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/logging"
	"skyline/opsboard/internal/models/dtos"
	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/reconcile"
)

// commitPlan is what a commit will write, whatever the entity kind.
type commitPlan struct {
	total    int
	adds     int
	updates  int
	warnings []string
	errors   []string
	write    func(ctx context.Context, tx *gorm.DB) error
}

func (p commitPlan) blocked() bool { return len(p.errors) > 0 }

// Commit applies a batch. It re-validates the content unless the caller
// hands back a preview with TrustPreview set. Every attempt leaves exactly
// one audit row: a success row written inside the data transaction, or a
// failed row written after the rollback.
//
// The returned error is ErrCommitBlocked or wraps ErrCommitFailed when the
// attempt was refused or rolled back; the result is still filled in.
func (s *ImportService) Commit(ctx context.Context, in ImportInput) (*dtos.CommitResult, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrMissingUser
	}
	if in.Channel == "" {
		in.Channel = constants.ChannelAPI
	}
	start := time.Now()

	var (
		plan commitPlan
		err  error
	)
	if in.Kind == constants.KindAircraft {
		plan, err = s.planAircraft(ctx, in)
	} else {
		plan, err = s.planCustomers(ctx, in)
	}
	if errors.Is(err, ErrInvalidPreview) {
		return nil, err
	}
	if err != nil {
		res := s.recordFailure(ctx, in, plan, err)
		return res, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	if plan.blocked() && !in.OverrideConflicts {
		res := s.recordFailure(ctx, in, plan, errors.New(constants.MsgCommitBlocked))
		return res, ErrCommitBlocked
	}

	entry := s.auditEntry(in, plan, constants.ImportStatusSuccess)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := plan.write(ctx, tx); err != nil {
			return err
		}
		return s.logs.WithTx(tx).Record(ctx, entry)
	})
	if err != nil {
		logging.WithImport(string(in.Kind), string(in.Format), string(in.Channel)).Errorw("Import commit rolled back",
			"user_id", in.UserID,
			"error", err,
		)
		res := s.recordFailure(ctx, in, plan, err)
		return res, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	s.metrics.ImportCommitsTotal.WithLabelValues(string(in.Kind), string(constants.ImportStatusSuccess)).Inc()
	s.metrics.ImportDuration.WithLabelValues(string(in.Kind), "commit").Observe(time.Since(start).Seconds())
	logging.WithImport(string(in.Kind), string(in.Format), string(in.Channel)).Infow("Import committed",
		"log_id", entry.ID,
		"added", plan.adds,
		"updated", plan.updates,
		"skipped", entry.RecordsSkipped,
		"user_id", in.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &dtos.CommitResult{
		Success:  true,
		LogID:    entry.ID,
		Summary:  dtos.CommitSummary{Added: entry.RecordsAdded, Updated: entry.RecordsUpdated, Skipped: entry.RecordsSkipped},
		Errors:   plan.errors,
		Warnings: plan.warnings,
	}, nil
}

func (s *ImportService) auditEntry(in ImportInput, plan commitPlan, status constants.ImportStatus) *gormModels.ImportLog {
	entry := &gormModels.ImportLog{
		DataType:       string(in.Kind),
		Source:         string(in.Channel),
		Format:         string(in.Format),
		FileName:       in.FileName,
		TrustLevel:     trustLevel(in),
		RecordsTotal:   plan.total,
		RecordsSkipped: plan.total,
		ImportedBy:     in.UserID,
		Status:         string(status),
		Warnings:       encodeMessages(plan.warnings),
		Errors:         encodeMessages(plan.errors),
	}
	if status == constants.ImportStatusSuccess {
		entry.RecordsAdded = plan.adds
		entry.RecordsUpdated = plan.updates
		entry.RecordsSkipped = max(plan.total-plan.adds-plan.updates, 0)
	}
	return entry
}

// recordFailure writes the failed audit row outside any transaction. Nothing
// was written, so every record counts as skipped.
func (s *ImportService) recordFailure(ctx context.Context, in ImportInput, plan commitPlan, cause error) *dtos.CommitResult {
	plan.errors = append(append([]string{}, plan.errors...), cause.Error())
	entry := s.auditEntry(in, plan, constants.ImportStatusFailed)

	if err := s.logs.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.Error("Failed to write failed import log", "kind", in.Kind, "error", err)
		entry.ID = ""
	}
	s.metrics.ImportCommitsTotal.WithLabelValues(string(in.Kind), string(constants.ImportStatusFailed)).Inc()
	logging.WithImport(string(in.Kind), string(in.Format), string(in.Channel)).Warnw("Import commit failed",
		"log_id", entry.ID,
		"user_id", in.UserID,
		"error", cause,
	)

	return &dtos.CommitResult{
		Success:  false,
		LogID:    entry.ID,
		Summary:  dtos.CommitSummary{Skipped: entry.RecordsSkipped},
		Errors:   plan.errors,
		Warnings: plan.warnings,
	}
}

// decodePreview loads a caller-supplied validation result into dst.
func decodePreview(in ImportInput, dst interface{}) (bool, error) {
	if !in.TrustPreview || len(in.Preview) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(in.Preview, dst); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPreview, err)
	}
	return true, nil
}

func (s *ImportService) planCustomers(ctx context.Context, in ImportInput) (commitPlan, error) {
	var res reconcile.CustomerResult
	trusted, err := decodePreview(in, &res)
	if err != nil {
		return commitPlan{}, err
	}
	if !trusted {
		if res, err = s.ValidateCustomers(ctx, in); err != nil {
			return commitPlan{}, err
		}
	}

	adds, updates := res.Writes(in.OverrideConflicts)
	plan := commitPlan{
		total:    res.Summary.Total,
		adds:     len(adds),
		updates:  len(updates),
		warnings: res.Details.Warnings,
		errors:   res.Details.Errors,
	}
	plan.write = func(ctx context.Context, tx *gorm.DB) error {
		repo := s.customers.WithTx(tx)
		// Updates go first so a name renamed away is free for an add.
		for i := range updates {
			if err := repo.Update(ctx, &updates[i].New); err != nil {
				return err
			}
		}
		current, err := repo.ListAll(ctx)
		if err != nil {
			return err
		}
		reconcile.AssignColors(adds, reconcile.UsedColors(current))
		return repo.CreateBatch(ctx, adds)
	}
	return plan, nil
}

func (s *ImportService) planAircraft(ctx context.Context, in ImportInput) (commitPlan, error) {
	var res reconcile.AircraftResult
	trusted, err := decodePreview(in, &res)
	if err != nil {
		return commitPlan{}, err
	}
	if !trusted {
		if res, err = s.ValidateAircraft(ctx, in); err != nil {
			return commitPlan{}, err
		}
	}

	adds, updates := res.Writes(in.OverrideConflicts)
	plan := commitPlan{
		total:    res.Summary.Total,
		adds:     len(adds),
		updates:  len(updates),
		warnings: res.Details.Warnings,
		errors:   res.Details.Errors,
	}
	plan.write = func(ctx context.Context, tx *gorm.DB) error {
		repo := s.aircraft.WithTx(tx)
		for i := range updates {
			if err := repo.Update(ctx, &updates[i].New); err != nil {
				return err
			}
		}
		return repo.CreateBatch(ctx, adds)
	}
	return plan, nil
}
