package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"skyline/opsboard/internal/models/dtos"
)

func TestHealthCheckHandler(t *testing.T) {
	orm, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	handler := HealthCheckHandler(sqlx.NewDb(sqlDB, "sqlite3"), time.Now().Add(-time.Minute))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dtos.HealthCheckResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Services["database"].Status)

	require.NoError(t, sqlDB.Close())
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
