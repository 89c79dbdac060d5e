// Package source supplies the dashboard's startup dataset: the known variables,
// the sample points, and any seed regions.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
)

// ErrUnknownSource is returned by New for an unrecognised source kind.
var ErrUnknownSource = errors.New("unknown data source")

// Loader produces a dataset.
type Loader interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// Kinds accepted by New.
const (
	KindMock   = "mock"
	KindSQLite = "sqlite"
)

// Options configures New.
type Options struct {
	Kind       string
	SQLitePath string
	MockPoints int
	MockSeed   int64
	// Timestamps are the grid instants mock points are placed on.
	Timestamps []int64
}

// New returns the loader for opts.Kind.
func New(opts Options) (Loader, error) {
	switch opts.Kind {
	case KindMock:
		return &Mock{Points: opts.MockPoints, Seed: opts.MockSeed, Timestamps: opts.Timestamps}, nil
	case KindSQLite:
		return &SQLite{Path: opts.SQLitePath}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, opts.Kind)
	}
}
