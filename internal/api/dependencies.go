package api

import (
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"skyline/opsboard/internal/common"
	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/db/repositories"
	"skyline/opsboard/internal/metrics"
	"skyline/opsboard/internal/services"
)

type Repositories struct {
	ImportLogs *repositories.ImportLogReader
}

type Services struct {
	Cache   common.CacheInterface
	Imports *services.ImportService
	Rules   *services.MappingRuleService
}

type Dependencies struct {
	Config   *config.Config
	SQL      *sqlx.DB
	Metrics  *metrics.MetricsRegistry
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires repositories and services over the open handles.
func InitDependencies(cfg *config.Config, orm *gorm.DB, sqlDB *sqlx.DB, metricsReg *metrics.MetricsRegistry) *Dependencies {
	cache := common.NewCache(cfg)
	rules := services.NewMappingRuleService(orm, cache, cfg, metricsReg)

	return &Dependencies{
		Config:  cfg,
		SQL:     sqlDB,
		Metrics: metricsReg,
		Repo: &Repositories{
			ImportLogs: repositories.NewImportLogReader(sqlDB),
		},
		Services: &Services{
			Cache:   cache,
			Imports: services.NewImportService(orm, rules, cfg, metricsReg),
			Rules:   rules,
		},
	}
}
