package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skyline/opsboard/internal/api"
	"skyline/opsboard/internal/auth"
	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/metrics"
	"skyline/opsboard/internal/models/dtos"
	gormModels "skyline/opsboard/internal/models/gorm"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	orm, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, orm.AutoMigrate(gormModels.All()...))

	cfg := &config.Config{
		AppEnv:              "test",
		CacheBackend:        "memory",
		RuleCacheTTL:        time.Minute,
		JWTSecret:           testSecret,
		FuzzyMatchThreshold: 70,
		ConflictMode:        constants.ConflictWarn,
		ExactPriorityMark:   100,
		RateLimitRPS:        100,
		RateLimitBurst:      100,
		MaxUploadBytes:      1 << 20,
	}
	promReg := prometheus.NewRegistry()
	deps := api.InitDependencies(cfg, orm, sqlx.NewDb(sqlDB, "sqlite3"), metrics.NewMetricsRegistry(promReg))
	return RegisterRoutes(deps, promReg, time.Now())
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := auth.IssueToken([]byte(testSecret), "ops-user", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_PublicEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "opsboard_http_requests_in_flight")
}

func TestRouter_APIRequiresToken(t *testing.T) {
	h := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/import/logs", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_CommitThenListLogs(t *testing.T) {
	h := newTestRouter(t)

	body, err := json.Marshal(dtos.ImportRequest{
		Content: "name,short_name\nCathay Pacific,CX\n",
		Format:  "csv",
		Source:  "paste",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/customer/commit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/import/logs?dataType=customer", nil)
	req.Header.Set("Authorization", bearer(t))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []gormModels.ImportLog `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "ops-user", resp.Data[0].ImportedBy)
	assert.Equal(t, "paste", resp.Data[0].Source)
	assert.Equal(t, 1, resp.Data[0].RecordsAdded)
}

func TestRouter_RuleAdministration(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/aircraft-types/rules/reset", nil)
	req.Header.Set("Authorization", bearer(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/aircraft-types/canonicalize?raw=B77W", nil)
	req.Header.Set("Authorization", bearer(t))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `"canonical":"B777"`), rr.Body.String())
}
