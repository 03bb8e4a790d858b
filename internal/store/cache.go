// Package store persists fetched contribution data in Badger with a TTL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/contribgraph/contribgraph-server/internal/domain"
)

const (
	keyPrefix = "contrib:"
	latestKey = "latest"

	// DefaultTTL applies when Options.TTL is zero.
	DefaultTTL = time.Hour

	gcDiscardRatio = 0.5
)

// Options configures the cache.
type Options struct {
	// Path is the Badger directory. Empty means in-memory.
	Path string
	TTL  time.Duration
}

// Cache stores one ContributionData per (username, year) key.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open opens or creates the cache.
func Open(opts Options, logger *slog.Logger) (*Cache, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.Path == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if logger != nil {
		logger.Info("contribution cache opened",
			"path", opts.Path,
			"in_memory", opts.Path == "",
			"ttl", ttl,
		)
	}

	return &Cache{db: db, ttl: ttl, logger: logger}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.logger != nil {
		c.logger.Info("closing contribution cache")
	}
	return c.db.Close()
}

// TTL returns the lifetime of stored entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key builds the cache key for a user and optional year.
// Usernames are case-insensitive.
func Key(username string, year *int) string {
	suffix := latestKey
	if year != nil {
		suffix = strconv.Itoa(*year)
	}
	return keyPrefix + strings.ToLower(username) + ":" + suffix
}

// Get returns the cached data. A miss or an expired entry reports ok=false
// with a nil error.
func (c *Cache) Get(ctx context.Context, username string, year *int) (data domain.ContributionData, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return data, false, err
	}

	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key(username, year)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &data)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ContributionData{}, false, nil
	}
	if err != nil {
		return domain.ContributionData{}, false, fmt.Errorf("cache get: %w", err)
	}
	return data, true, nil
}

// Set stores data for the key with the cache TTL.
func (c *Cache) Set(ctx context.Context, username string, year *int, data domain.ContributionData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	val, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(Key(username, year)), val).WithTTL(c.ttl)
		return txn.SetEntry(e)
	})
}

// Delete removes the entry for the key, if any.
func (c *Cache) Delete(ctx context.Context, username string, year *int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(Key(username, year)))
	})
}

// Ping checks that the database still answers reads.
func (c *Cache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.View(func(*badger.Txn) error { return nil })
}

// RunGC reclaims value-log space on every tick until ctx is done.
// It is a no-op for in-memory caches.
func (c *Cache) RunGC(ctx context.Context, interval time.Duration) {
	if c.db.Opts().InMemory {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for c.db.RunValueLogGC(gcDiscardRatio) == nil {
			}
		}
	}
}
