// Package providers contains dependency injection providers for the BookPrepper server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookprepper/bookprepper-server/internal/config"
	"github.com/bookprepper/bookprepper-server/internal/logger"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting BookPrepper Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"database_path", cfg.Database.Path,
		"search_enabled", cfg.Search.Enabled,
	)

	return log, nil
}
