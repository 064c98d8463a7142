package service

import (
	"context"
	"log/slog"

	"github.com/bookprepper/bookprepper-server/internal/cache"
	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

const catalogStatsKey = "catalog_stats"

// CacheMetrics records stats cache effectiveness.
type CacheMetrics interface {
	RecordStatsCacheLookup(hit bool)
}

// StatsService serves catalog-wide counts through a TTL cache.
type StatsService struct {
	store   store.StatsStore
	cache   cache.Cache
	metrics CacheMetrics
	logger  *slog.Logger
}

// NewStatsService creates a new stats service. A nil cache disables caching;
// metrics may be nil.
func NewStatsService(s store.StatsStore, c cache.Cache, metrics CacheMetrics, logger *slog.Logger) *StatsService {
	if c == nil {
		c = cache.Nop{}
	}
	return &StatsService{
		store:   s,
		cache:   c,
		metrics: metrics,
		logger:  logger,
	}
}

// CatalogStats returns the cached counts, computing them on a miss.
func (s *StatsService) CatalogStats(ctx context.Context) (*domain.CatalogStats, error) {
	if v, ok := s.cache.Get(catalogStatsKey); ok {
		if stats, ok := v.(*domain.CatalogStats); ok {
			s.record(true)
			copied := *stats
			return &copied, nil
		}
	}
	s.record(false)

	stats, err := s.store.CatalogStats(ctx)
	if err != nil {
		return nil, err
	}
	copied := *stats
	s.cache.Set(catalogStatsKey, &copied)
	return stats, nil
}

// Invalidate drops the cached counts so the next read recomputes them.
func (s *StatsService) Invalidate() {
	if s == nil {
		return
	}
	s.cache.Invalidate(catalogStatsKey)
	s.logger.Debug("catalog stats invalidated")
}

func (s *StatsService) record(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordStatsCacheLookup(hit)
	}
}
