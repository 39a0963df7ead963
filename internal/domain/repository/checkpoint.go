package repository

import (
	"context"
	"time"
)

// CheckpointRepository remembers how far a poller has read an external feed.
type CheckpointRepository interface {
	Load(ctx context.Context, name string) (time.Time, bool, error)
	Save(ctx context.Context, name string, at time.Time) error
}
