package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/models/dtos"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	c.Set("k", "v", time.Minute)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Set("short", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok = c.Get("short")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestNewCache_DefaultsToMemory(t *testing.T) {
	c := NewCache(&config.Config{CacheBackend: "memory", RuleCacheTTL: time.Minute})
	assert.IsType(t, &MemoryCache{}, c)
}

func TestRespondHelpers(t *testing.T) {
	start := time.Now()

	rr := httptest.NewRecorder()
	RespondSuccess(rr, start, "done", map[string]int{"n": 1}, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var resp dtos.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "done", resp.Message)
	assert.Contains(t, resp.ResponseTime, "ms")

	rr = httptest.NewRecorder()
	RespondError(rr, start, errors.New("boom"), "ignored", http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp = dtos.APIResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "boom", resp.Message)
	assert.Nil(t, resp.Data)

	rr = httptest.NewRecorder()
	RespondErrorData(rr, start, "blocked", dtos.CommitResult{LogID: "x"}, http.StatusUnprocessableEntity)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	resp = dtos.APIResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "x", resp.Data.(map[string]any)["logId"])
}
