package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/contribgraph/contribgraph-server/internal/api"
	"github.com/contribgraph/contribgraph-server/internal/config"
	"github.com/contribgraph/contribgraph-server/internal/logger"
	"github.com/contribgraph/contribgraph-server/internal/service"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

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

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	charts := do.MustInvoke[*service.ChartService](i)
	cache := do.MustInvoke[*CacheHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)

	handler := api.NewServer(charts, cache.Cache, api.Options{
		ChartMaxAge: cfg.Cache.ChartMaxAge,
		DataMaxAge:  cfg.Cache.DataMaxAge,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimiter: limiter.Limiter,
		Version:     Version,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
