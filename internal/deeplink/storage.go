package deeplink

import (
	"context"
	"time"
)

// Storage defines the deeplink history storage API
type Storage interface {
	// Insert records all given links or none of them
	Insert(ctx context.Context, links ...*GeneratedLink) error

	// List retrieves a page of links, newest first
	List(ctx context.Context, offset, limit int) ([]*GeneratedLink, error)

	// Count returns the total amount of recorded links
	Count(ctx context.Context) (int, error)

	// Clear removes every recorded link
	Clear(ctx context.Context) error

	// PruneBefore removes all links generated before the given instant and returns their amount
	PruneBefore(ctx context.Context, instant time.Time) (int, error)
}
