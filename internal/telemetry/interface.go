package telemetry

import (
	"context"
	"time"

	"codeberg.org/ovesen/blenddyno/internal/engine"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, run *RunSnapshot) error
	Close() error
}

// Repository defines the interface for run data storage
type Repository interface {
	Record(run *RunSnapshot) error
	Close() error
}

// RunSnapshot is one completed run: the post-noise series for every
// blend plus the parameters needed to reproduce them.
type RunSnapshot struct {
	Timestamp     time.Time
	Seed          int64
	NoiseFraction float64
	Series        []*engine.Series
}
