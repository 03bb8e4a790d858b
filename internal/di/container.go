// Package di provides dependency injection configuration for the chart server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/contribgraph/contribgraph-server/internal/config"
	"github.com/contribgraph/contribgraph-server/internal/di/providers"
	"github.com/contribgraph/contribgraph-server/internal/logger"
	"github.com/contribgraph/contribgraph-server/internal/render"
	"github.com/contribgraph/contribgraph-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage
	do.Provide(injector, providers.ProvideCache)

	// Upstream and rendering
	do.Provide(injector, providers.ProvideGitHubClient)
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideChartService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services eagerly so startup errors surface before
// the server begins accepting requests.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.GitHubClientHandle](injector)
	if _, err := do.Invoke[*render.Renderer](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.ChartService](injector)

	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
