package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookprepper/bookprepper-server/internal/cache"
	"github.com/bookprepper/bookprepper-server/internal/logger"
	"github.com/bookprepper/bookprepper-server/internal/metrics"
	"github.com/bookprepper/bookprepper-server/internal/moderation"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
	"github.com/bookprepper/bookprepper-server/internal/service"
)

// ProvideScoringEngine provides the feedback scoring engine.
func ProvideScoringEngine(i do.Injector) (*scoring.Engine, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	return scoring.NewEngine(storeHandle.Store, log.Logger, m), nil
}

// ProvideModerationWorkflow provides the suggestion moderation workflow.
func ProvideModerationWorkflow(i do.Injector) (*moderation.Workflow, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	return moderation.NewWorkflow(storeHandle.Store, log.Logger, m), nil
}

// ProvideStatsService provides the cached catalog stats service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	c := do.MustInvoke[cache.Cache](i)

	return service.NewStatsService(storeHandle.Store, c, m, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	stats := do.MustInvoke[*service.StatsService](i)

	return service.NewBookService(storeHandle.Store, searchService, stats, log.Logger), nil
}

// ProvidePrepService provides the prep service.
func ProvidePrepService(i do.Injector) (*service.PrepService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	stats := do.MustInvoke[*service.StatsService](i)

	return service.NewPrepService(storeHandle.Store, searchService, stats, log.Logger), nil
}

// ProvideGenreService provides the genre service.
func ProvideGenreService(i do.Injector) (*service.GenreService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	stats := do.MustInvoke[*service.StatsService](i)

	return service.NewGenreService(storeHandle.Store, stats, log.Logger), nil
}

// ProvideFeedbackService provides the feedback service.
func ProvideFeedbackService(i do.Injector) (*service.FeedbackService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	engine := do.MustInvoke[*scoring.Engine](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	stats := do.MustInvoke[*service.StatsService](i)

	return service.NewFeedbackService(storeHandle.Store, engine, m, stats, log.Logger), nil
}

// ProvideSuggestionService provides the suggestion service.
func ProvideSuggestionService(i do.Injector) (*service.SuggestionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	workflow := do.MustInvoke[*moderation.Workflow](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	stats := do.MustInvoke[*service.StatsService](i)

	return service.NewSuggestionService(storeHandle.Store, workflow, searchService, stats, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}
