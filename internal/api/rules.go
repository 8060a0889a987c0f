package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"skyline/opsboard/internal/canonical"
	"skyline/opsboard/internal/common"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/models/dtos"
	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/services"
)

type RuleAdmin interface {
	List(ctx context.Context) ([]gormModels.AircraftTypeMapping, error)
	Create(ctx context.Context, rule canonical.Rule) (*gormModels.AircraftTypeMapping, error)
	Update(ctx context.Context, id uint, rule canonical.Rule) (*gormModels.AircraftTypeMapping, error)
	Delete(ctx context.Context, id uint) error
	ResetToDefaults(ctx context.Context) (int, error)
	Canonicalize(ctx context.Context, rawType, registration string) (canonical.Result, error)
	Backfill(ctx context.Context) (int, int, error)
}

// ListRulesHandler handles GET /api/v1/aircraft-types/rules
func ListRulesHandler(svc RuleAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rules, err := svc.List(r.Context())
		if err != nil {
			common.RespondError(w, initTime, nil, "Failed to list mapping rules", http.StatusInternalServerError)
			return
		}
		common.RespondSuccess(w, initTime, "", rules)
	}
}

// CreateRuleHandler handles POST /api/v1/aircraft-types/rules
func CreateRuleHandler(svc RuleAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rule, ok := decodeRule(w, r, initTime)
		if !ok {
			return
		}

		created, err := svc.Create(r.Context(), rule)
		if err != nil {
			handleRuleError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Mapping rule created", created, http.StatusCreated)
	}
}

// UpdateRuleHandler handles PUT /api/v1/aircraft-types/rules/{id}
func UpdateRuleHandler(svc RuleAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := ruleID(w, r, initTime)
		if !ok {
			return
		}
		rule, ok := decodeRule(w, r, initTime)
		if !ok {
			return
		}

		updated, err := svc.Update(r.Context(), id, rule)
		if err != nil {
			handleRuleError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Mapping rule updated", updated)
	}
}

// DeleteRuleHandler handles DELETE /api/v1/aircraft-types/rules/{id}
func DeleteRuleHandler(svc RuleAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := ruleID(w, r, initTime)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			handleRuleError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Mapping rule deleted", nil)
	}
}

// ResetRulesHandler handles POST /api/v1/aircraft-types/rules/reset
func ResetRulesHandler(svc RuleAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		n, err := svc.ResetToDefaults(r.Context())
		if err != nil {
			handleRuleError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Mapping rules reset to defaults", dtos.ResetRulesResponse{Rules: n})
	}
}

// CanonicalizeHandler handles GET /api/v1/aircraft-types/canonicalize
func CanonicalizeHandler(svc RuleAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		raw := r.URL.Query().Get("raw")
		registration := r.URL.Query().Get("registration")
		if strings.TrimSpace(raw) == "" && strings.TrimSpace(registration) == "" {
			common.RespondError(w, initTime, nil, "raw or registration is required", http.StatusBadRequest)
			return
		}

		res, err := svc.Canonicalize(r.Context(), raw, registration)
		if err != nil {
			handleRuleError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "", res)
	}
}

// BackfillHandler handles POST /api/v1/aircraft-types/backfill
func BackfillHandler(svc RuleAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		scanned, changed, err := svc.Backfill(r.Context())
		if err != nil {
			handleRuleError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Canonical types recomputed", dtos.BackfillResponse{Scanned: scanned, Changed: changed})
	}
}

func decodeRule(w http.ResponseWriter, r *http.Request, initTime time.Time) (canonical.Rule, bool) {
	var req dtos.MappingRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondCode(w, initTime, constants.ErrCodeMalformedPayload, http.StatusBadRequest)
		return canonical.Rule{}, false
	}
	return canonical.Rule{
		Pattern:       strings.TrimSpace(req.Pattern),
		CanonicalType: strings.TrimSpace(req.CanonicalType),
		Priority:      req.Priority,
		IsActive:      req.Active(),
		Description:   req.Description,
	}, true
}

func ruleID(w http.ResponseWriter, r *http.Request, initTime time.Time) (uint, bool) {
	id, err := cast.ToUintE(chi.URLParam(r, "id"))
	if err != nil || id == 0 {
		common.RespondError(w, initTime, nil, "Invalid rule id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func handleRuleError(w http.ResponseWriter, initTime time.Time, err error) {
	switch {
	case errors.Is(err, canonical.ErrInvalidRule):
		common.RespondError(w, initTime, nil, fmt.Sprintf("[%s] %v", constants.ErrCodeInvalidRule, err), http.StatusBadRequest)
	case errors.Is(err, services.ErrRuleNotFound):
		respondCode(w, initTime, constants.ErrCodeRuleNotFound, http.StatusNotFound)
	default:
		common.RespondError(w, initTime, nil, "An unexpected error occurred", http.StatusInternalServerError)
	}
}
