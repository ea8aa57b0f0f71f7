package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/haytac/message-formatter/internal/formatter"
	"github.com/haytac/message-formatter/internal/metrics"
	"github.com/haytac/message-formatter/pkg/interfaces"
)

// CatalogCache holds the latest catalog snapshot as a formatting context.
// Readers never block; a failed refresh keeps the previous snapshot.
type CatalogCache struct {
	source  interfaces.CatalogSource
	current atomic.Pointer[formatter.Context]
}

// NewCatalogCache creates a cache that starts out with an empty catalog.
func NewCatalogCache(source interfaces.CatalogSource) *CatalogCache {
	c := &CatalogCache{source: source}
	c.current.Store(formatter.NewContext([]formatter.Room{}, nil, nil, formatter.Location{}))
	return c
}

// Refresh reloads the snapshot from the source.
func (c *CatalogCache) Refresh(ctx context.Context) error {
	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refreshing catalog: %w", err)
	}
	c.current.Store(formatter.NewContext(snap.Rooms, snap.Emotes, snap.Replacements, formatter.Location{}))

	metrics.CatalogRefreshes.WithLabelValues("success").Inc()
	metrics.CatalogEntries.WithLabelValues("rooms").Set(float64(len(snap.Rooms)))
	metrics.CatalogEntries.WithLabelValues("emotes").Set(float64(len(snap.Emotes)))
	metrics.CatalogEntries.WithLabelValues("replacements").Set(float64(len(snap.Replacements)))
	log.Debug().
		Int("rooms", len(snap.Rooms)).
		Int("emotes", len(snap.Emotes)).
		Int("replacements", len(snap.Replacements)).
		Msg("Catalog snapshot loaded")
	return nil
}

// Context implements interfaces.ContextProvider.
func (c *CatalogCache) Context(loc formatter.Location) *formatter.Context {
	return c.current.Load().WithLocation(loc)
}

// Run refreshes the cache every interval until ctx is done.
func (c *CatalogCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("Catalog refresh failed, keeping previous snapshot")
			}
		}
	}
}
