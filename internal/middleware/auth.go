package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"skyline/opsboard/internal/auth"
	"skyline/opsboard/internal/common"
	"skyline/opsboard/internal/logging"
)

// AuthMiddleware requires a bearer JWT and stores its claims on the request.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				common.RespondError(w, initTime, errors.New("unauthorized: missing bearer token"), "", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
			if err != nil {
				logging.Debug("Rejected bearer token", "request_id", RequestID(r.Context()), "error", err)
				common.RespondError(w, initTime, errors.New("unauthorized: invalid token"), "", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
