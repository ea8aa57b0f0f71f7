package interfaces

import (
	"context"

	"github.com/haytac/message-formatter/internal/database"
	"github.com/haytac/message-formatter/internal/formatter"
)

// MessageFormatter renders raw message text into an HTML fragment.
type MessageFormatter interface {
	Format(text string, c *formatter.Context) (string, error)
}

// CatalogSource supplies catalog snapshots.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*database.Catalog, error)
}

// ContextProvider hands out the current formatting context for a page location.
type ContextProvider interface {
	Context(loc formatter.Location) *formatter.Context
}
