package routes

import (
	"github.com/go-chi/chi/v5"

	"skyline/opsboard/internal/api"
	"skyline/opsboard/internal/middleware"
)

// RegisterAPIRoutes registers the authenticated /api/v1 routes.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {
	cfg := deps.Config
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(deps.Metrics))
		v1.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))

		v1.Route("/import", func(imp chi.Router) {
			imp.Get("/logs", api.ListImportLogsHandler(deps.Repo.ImportLogs))

			imp.Group(func(upload chi.Router) {
				upload.Use(limiter.Middleware)
				upload.Post("/{kind}/validate", api.ValidateImportHandler(deps.Services.Imports, cfg.MaxUploadBytes))
				upload.Post("/{kind}/commit", api.CommitImportHandler(deps.Services.Imports, cfg.MaxUploadBytes))
			})
		})

		v1.Route("/aircraft-types", func(types chi.Router) {
			types.Get("/canonicalize", api.CanonicalizeHandler(deps.Services.Rules))
			types.Post("/backfill", api.BackfillHandler(deps.Services.Rules))

			types.Get("/rules", api.ListRulesHandler(deps.Services.Rules))
			types.Post("/rules", api.CreateRuleHandler(deps.Services.Rules))
			types.Post("/rules/reset", api.ResetRulesHandler(deps.Services.Rules))
			types.Put("/rules/{id}", api.UpdateRuleHandler(deps.Services.Rules))
			types.Delete("/rules/{id}", api.DeleteRuleHandler(deps.Services.Rules))
		})
	})
}
