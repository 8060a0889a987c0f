package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyline/opsboard/internal/auth"
	"skyline/opsboard/internal/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	var seen string
	handler := AuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			seen = claims.UserID()
		}
		w.WriteHeader(http.StatusOK)
	}))

	token, err := auth.IssueToken(secret, "user-7", time.Hour)
	require.NoError(t, err)
	other, err := auth.IssueToken([]byte("other"), "user-7", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + other, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/import/logs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
	assert.Equal(t, "user-7", seen)
}

func TestRateLimiter_PerClient(t *testing.T) {
	handler := NewRateLimiter(0.001, 2).Middleware(okHandler)

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/import/customer/validate", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000"))
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc", seen)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/v1/aircraft-types/rules/{id}", NormalizeEndpoint("/api/v1/aircraft-types/rules/42"))
	assert.Equal(t, "/api/v1/import/{id}", NormalizeEndpoint("/api/v1/import/3f0c5a8e-8f5e-4a43-9a53-7d1f2d3c4b5a"))
	assert.Equal(t, "/api/v1/import/customer/commit", NormalizeEndpoint("/api/v1/import/customer/commit"))
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := metrics.NewMetricsRegistry(promReg)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Delete("/rules/{id}", okHandler)
	r.Get("/teapot", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	for _, path := range []string{"/rules/1", "/rules/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	counts := requestCounts(t, promReg)
	assert.Equal(t, 2.0, counts["/rules/{id} DELETE 200"])
	assert.Equal(t, 1.0, counts["/teapot GET 418"])
	assert.Len(t, counts, 2)
}

// requestCounts flattens the request counter into "endpoint method status" keys.
func requestCounts(t *testing.T, g prometheus.Gatherer) map[string]float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "opsboard_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out[labels["endpoint"]+" "+labels["method"]+" "+labels["status_code"]] = m.GetCounter().GetValue()
		}
	}
	return out
}
