package workers

import (
	"context"
	"time"

	"skyline/opsboard/internal/logging"
)

// RuleRefresher reloads the cached mapping rule table.
type RuleRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// StartRuleCacheWarmer reloads the rule table on start and then every
// interval, until ctx is cancelled. A failed reload is logged and the
// previous cache entry, if any, has already been dropped.
func StartRuleCacheWarmer(ctx context.Context, rules RuleRefresher, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refillRuleCache(ctx, rules)

	for {
		select {
		case <-ticker.C:
			refillRuleCache(ctx, rules)
		case <-ctx.Done():
			logging.Info("Rule cache warmer stopped")
			return
		}
	}
}

func refillRuleCache(ctx context.Context, rules RuleRefresher) {
	n, err := rules.Refresh(ctx)
	if err != nil {
		logging.Warn("Failed to warm mapping rule cache", "error", err)
		return
	}
	logging.Debug("Mapping rule cache warmed", "rules", n)
}
