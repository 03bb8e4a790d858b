package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/contribgraph/contribgraph-server/internal/config"
	"github.com/contribgraph/contribgraph-server/internal/logger"
	"github.com/contribgraph/contribgraph-server/internal/store"
)

// CacheHandle wraps the contribution cache with its GC loop.
type CacheHandle struct {
	*store.Cache
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	h.cancel()
	return h.Close()
}

// ProvideCache provides the Badger-backed contribution cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cache, err := store.Open(store.Options{
		Path: cfg.Cache.Path,
		TTL:  cfg.Cache.TTL,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go cache.RunGC(ctx, cacheGCInterval)

	return &CacheHandle{Cache: cache, cancel: cancel}, nil
}
