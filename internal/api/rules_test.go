package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyline/opsboard/internal/canonical"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/models/dtos"
	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/services"
)

// mockRuleAdmin keeps rules in a map and records the last rule it was given.
type mockRuleAdmin struct {
	rules  map[uint]gormModels.AircraftTypeMapping
	nextID uint
	last   canonical.Rule
}

func newMockRuleAdmin() *mockRuleAdmin {
	return &mockRuleAdmin{rules: map[uint]gormModels.AircraftTypeMapping{}, nextID: 1}
}

func (m *mockRuleAdmin) List(ctx context.Context) ([]gormModels.AircraftTypeMapping, error) {
	out := make([]gormModels.AircraftTypeMapping, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRuleAdmin) Create(ctx context.Context, rule canonical.Rule) (*gormModels.AircraftTypeMapping, error) {
	m.last = rule
	if !constants.IsCanonicalType(rule.CanonicalType) {
		return nil, fmt.Errorf("%w: unknown canonical type %q", canonical.ErrInvalidRule, rule.CanonicalType)
	}
	row := gormModels.AircraftTypeMapping{ID: m.nextID, Pattern: rule.Pattern, CanonicalType: rule.CanonicalType, Priority: rule.Priority, IsActive: rule.IsActive}
	m.rules[row.ID] = row
	m.nextID++
	return &row, nil
}

func (m *mockRuleAdmin) Update(ctx context.Context, id uint, rule canonical.Rule) (*gormModels.AircraftTypeMapping, error) {
	m.last = rule
	row, ok := m.rules[id]
	if !ok {
		return nil, services.ErrRuleNotFound
	}
	row.Pattern, row.CanonicalType, row.Priority, row.IsActive = rule.Pattern, rule.CanonicalType, rule.Priority, rule.IsActive
	m.rules[id] = row
	return &row, nil
}

func (m *mockRuleAdmin) Delete(ctx context.Context, id uint) error {
	if _, ok := m.rules[id]; !ok {
		return services.ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *mockRuleAdmin) ResetToDefaults(ctx context.Context) (int, error) {
	return 55, nil
}

func (m *mockRuleAdmin) Canonicalize(ctx context.Context, rawType, registration string) (canonical.Result, error) {
	return canonical.Result{Raw: rawType, Registration: registration, Canonical: "B777", Confidence: canonical.ConfidenceExact}, nil
}

func (m *mockRuleAdmin) Backfill(ctx context.Context) (int, int, error) {
	return 0, 0, errors.New("db down")
}

func ruleRouter(svc RuleAdmin) http.Handler {
	r := chi.NewRouter()
	r.Get("/rules", ListRulesHandler(svc))
	r.Post("/rules", CreateRuleHandler(svc))
	r.Post("/rules/reset", ResetRulesHandler(svc))
	r.Put("/rules/{id}", UpdateRuleHandler(svc))
	r.Delete("/rules/{id}", DeleteRuleHandler(svc))
	r.Get("/canonicalize", CanonicalizeHandler(svc))
	r.Post("/backfill", BackfillHandler(svc))
	return r
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, dtos.APIResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, decodeResponse(t, rr)
}

func TestRuleHandlers_Lifecycle(t *testing.T) {
	svc := newMockRuleAdmin()
	h := ruleRouter(svc)

	rr, _ := serve(t, h, jsonRequest(t, "/rules", dtos.MappingRuleRequest{Pattern: " B77* ", CanonicalType: "B777", Priority: 60}))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "B77*", svc.last.Pattern)
	assert.True(t, svc.last.IsActive, "isActive defaults to true")

	inactive := false
	req := jsonRequest(t, "/rules/1", dtos.MappingRuleRequest{Pattern: "B77*", CanonicalType: "B777", Priority: 60, IsActive: &inactive})
	req.Method = http.MethodPut
	rr, _ = serve(t, h, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, svc.rules[1].IsActive)

	rr, resp := serve(t, h, httptest.NewRequest(http.MethodGet, "/rules", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, resp.Data, 1)

	rr, _ = serve(t, h, httptest.NewRequest(http.MethodDelete, "/rules/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr, resp = serve(t, h, httptest.NewRequest(http.MethodDelete, "/rules/1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, resp.Message, constants.ErrCodeRuleNotFound)
}

func TestRuleHandlers_BadInput(t *testing.T) {
	h := ruleRouter(newMockRuleAdmin())

	rr, resp := serve(t, h, jsonRequest(t, "/rules", dtos.MappingRuleRequest{Pattern: "X*", CanonicalType: "Concorde"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, resp.Message, constants.ErrCodeInvalidRule)

	rr, _ = serve(t, h, httptest.NewRequest(http.MethodDelete, "/rules/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = serve(t, h, httptest.NewRequest(http.MethodGet, "/canonicalize", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, resp = serve(t, h, httptest.NewRequest(http.MethodPost, "/backfill", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, resp.Message, "db down")
}

func TestCanonicalizeAndResetHandlers(t *testing.T) {
	h := ruleRouter(newMockRuleAdmin())

	rr, resp := serve(t, h, httptest.NewRequest(http.MethodGet, "/canonicalize?raw=B777&registration=B-HLA", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "B777", data["canonical"])
	assert.Equal(t, "B-HLA", data["registration"])

	rr, resp = serve(t, h, httptest.NewRequest(http.MethodPost, "/rules/reset", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 55, resp.Data.(map[string]any)["rules"])
}
