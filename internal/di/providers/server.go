package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookprepper/bookprepper-server/internal/api"
	"github.com/bookprepper/bookprepper-server/internal/auth"
	"github.com/bookprepper/bookprepper-server/internal/config"
	"github.com/bookprepper/bookprepper-server/internal/logger"
	"github.com/bookprepper/bookprepper-server/internal/metrics"
	"github.com/bookprepper/bookprepper-server/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with every route registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	verifier := do.MustInvoke[*auth.Verifier](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	services := &api.Services{
		Book:       do.MustInvoke[*service.BookService](i),
		Prep:       do.MustInvoke[*service.PrepService](i),
		Genre:      do.MustInvoke[*service.GenreService](i),
		Feedback:   do.MustInvoke[*service.FeedbackService](i),
		Suggestion: do.MustInvoke[*service.SuggestionService](i),
		Stats:      do.MustInvoke[*service.StatsService](i),
		Search:     do.MustInvoke[*service.SearchService](i),
		User:       do.MustInvoke[*service.UserService](i),
	}

	return api.NewServer(services, api.Options{
		Verifier:       verifier,
		Limiter:        limiter.RateLimiter,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		Database:       storeHandle.Store,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log.Logger,
	}), nil
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
