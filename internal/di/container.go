// Package di provides dependency injection configuration for the BookPrepper server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/bookprepper/bookprepper-server/internal/api"
	"github.com/bookprepper/bookprepper-server/internal/auth"
	"github.com/bookprepper/bookprepper-server/internal/cache"
	"github.com/bookprepper/bookprepper-server/internal/config"
	"github.com/bookprepper/bookprepper-server/internal/di/providers"
	"github.com/bookprepper/bookprepper-server/internal/logger"
	"github.com/bookprepper/bookprepper-server/internal/metrics"
	"github.com/bookprepper/bookprepper-server/internal/moderation"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
	"github.com/bookprepper/bookprepper-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// The HTTP server is only registered; Bootstrap starts it.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideStatsCache)
	do.Provide(injector, providers.ProvideVerifier)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Engines
	do.Provide(injector, providers.ProvideScoringEngine)
	do.Provide(injector, providers.ProvideModerationWorkflow)

	// Business services
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvidePrepService)
	do.Provide(injector, providers.ProvideGenreService)
	do.Provide(injector, providers.ProvideFeedbackService)
	do.Provide(injector, providers.ProvideSuggestionService)
	do.Provide(injector, providers.ProvideUserService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if err := Core(injector); err != nil {
		return err
	}

	steps := []func() error{
		invoke[*auth.Verifier](injector),
		invoke[*providers.RateLimiterHandle](injector),
		invoke[*api.Server](injector),
		invoke[*providers.HTTPServerHandle](injector),
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	providers.TriggerSearchReindex(injector)

	return nil
}

// Core initializes everything except the HTTP surface. Maintenance
// commands use it to run against the same services as the server.
func Core(injector *do.RootScope) error {
	steps := []func() error{
		invoke[*logger.Logger](injector),
		invoke[*metrics.Metrics](injector),
		invoke[cache.Cache](injector),
		invoke[*providers.StoreHandle](injector),
		invoke[*providers.SearchIndexHandle](injector),
		invoke[*service.SearchService](injector),
		invoke[*scoring.Engine](injector),
		invoke[*moderation.Workflow](injector),
		invoke[*service.StatsService](injector),
		invoke[*service.BookService](injector),
		invoke[*service.PrepService](injector),
		invoke[*service.GenreService](injector),
		invoke[*service.FeedbackService](injector),
		invoke[*service.SuggestionService](injector),
		invoke[*service.UserService](injector),
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops every instantiated service in reverse dependency order.
// do reports failures in a ShutdownReport rather than an error.
func Shutdown(injector *do.RootScope) error {
	report := injector.Shutdown()
	if report == nil || report.Succeed {
		return nil
	}
	return fmt.Errorf("shutdown: %s", report.Error())
}

func invoke[T any](injector do.Injector) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
