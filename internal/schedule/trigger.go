package schedule

import (
	"context"
	"time"
)

// Purger removes temporary uploads last modified before cutoff.
type Purger interface {
	PurgeTemporary(ctx context.Context, cutoff time.Time) (int, error)
}
