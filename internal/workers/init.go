package workers

import (
	"context"
	"time"

	"skyline/opsboard/internal/logging"
)

// InitWorkers starts the background workers. They stop with ctx.
func InitWorkers(ctx context.Context, rules RuleRefresher, ruleCacheTTL time.Duration) {
	interval := ruleCacheTTL / 2
	go StartRuleCacheWarmer(ctx, rules, interval)
	logging.Info("Workers started", "rule_cache_refresh", interval.String())
}
