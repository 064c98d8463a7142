package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"

	"github.com/bookprepper/bookprepper-server/internal/api"
	"github.com/bookprepper/bookprepper-server/internal/cache"
	"github.com/bookprepper/bookprepper-server/internal/config"
	"github.com/bookprepper/bookprepper-server/internal/logger"
	"github.com/bookprepper/bookprepper-server/internal/metrics"
	"github.com/bookprepper/bookprepper-server/internal/ratelimit"
)

// ProvideMetrics provides the Prometheus collectors on a dedicated registry.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.New(registry)
}

// ProvideStatsCache provides the catalog stats cache. A zero TTL disables caching.
func ProvideStatsCache(i do.Injector) (cache.Cache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Cache.StatsTTL == 0 {
		return cache.Nop{}, nil
	}
	return cache.NewTTL(cfg.Cache.StatsTTL), nil
}

// RateLimiterHandle wraps the write limiter so its sweeper stops on shutdown.
type RateLimiterHandle struct {
	*api.RateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client write rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	limiter := ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	log.Info("Write rate limit configured",
		"requests_per_minute", cfg.RateLimit.RequestsPerMinute,
		"burst", cfg.RateLimit.Burst,
	)

	return &RateLimiterHandle{RateLimiter: limiter}, nil
}
