package providers

import (
	"github.com/samber/do/v2"

	"github.com/contribgraph/contribgraph-server/internal/config"
	"github.com/contribgraph/contribgraph-server/internal/github"
	"github.com/contribgraph/contribgraph-server/internal/logger"
	"github.com/contribgraph/contribgraph-server/internal/render"
	"github.com/contribgraph/contribgraph-server/internal/service"
)

// GitHubClientHandle wraps the GitHub client with shutdown capability.
type GitHubClientHandle struct {
	*github.Client
}

// Shutdown implements do.Shutdownable.
func (h *GitHubClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideGitHubClient provides the contribution source.
func ProvideGitHubClient(i do.Injector) (*GitHubClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := github.New(github.Config{
		Token:   cfg.GitHub.Token,
		APIURL:  cfg.GitHub.APIURL,
		WebURL:  cfg.GitHub.WebURL,
		Timeout: cfg.GitHub.Timeout,
		RPS:     cfg.GitHub.RPS,
		Burst:   cfg.GitHub.Burst,
	}, log.Logger)

	source := "scrape"
	if client.UsesAPI() {
		source = "graphql"
	}
	log.Info("GitHub client ready", "source", source, "rps", cfg.GitHub.RPS)

	return &GitHubClientHandle{Client: client}, nil
}

// ProvideRenderer provides the chart renderer with the configured raster scale.
func ProvideRenderer(i do.Injector) (*render.Renderer, error) {
	cfg := do.MustInvoke[*config.Config](i)

	raster, err := render.NewRasterizer(cfg.Render.RasterScale)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(raster), nil
}

// ProvideChartService provides the chart orchestration service.
func ProvideChartService(i do.Injector) (*service.ChartService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*GitHubClientHandle](i)
	cache := do.MustInvoke[*CacheHandle](i)
	renderer := do.MustInvoke[*render.Renderer](i)

	return service.NewChartService(client.Client, cache.Cache, renderer, log.Logger), nil
}
