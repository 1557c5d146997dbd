package singleton

import (
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// LoadFunc triggers one singleton construction and reports its outcome.
type LoadFunc func() error

// Loader returns a LoadFunc that constructs the T singleton via Instance.
//
// The outcome is exactly what Instance reports: nil once T is constructed, a
// ConfigurationError or ConstructionError otherwise.
func Loader[T any]() LoadFunc {
	return func() error {
		_, err := Instance[T]()
		return err
	}
}

// Prime runs all loaders concurrently and waits for every one of them.
//
// It is meant for composition roots that want construction failures at
// startup rather than on first request. A failing loader does not stop the
// others: each runs to completion and Prime returns the failures combined
// into one multierr error, in loader order, or nil when all succeeded. A nil
// loader contributes ErrNilLoader.
func Prime(loaders ...LoadFunc) error {
	return primeAll(0, loaders)
}

// PrimeLimit is Prime with at most limit loaders in flight at once.
//
// limit <= 0 means no bound. Use it when constructions compete for the same
// backend, for example connection handshakes against one database.
func PrimeLimit(limit int, loaders ...LoadFunc) error {
	return primeAll(limit, loaders)
}

func primeAll(limit int, loaders []LoadFunc) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	errs := make([]error, len(loaders))
	for i, load := range loaders {
		i, load := i, load
		g.Go(func() error {
			if load == nil {
				errs[i] = ErrNilLoader
			} else {
				errs[i] = load()
			}
			return errs[i]
		})
	}

	if err := g.Wait(); err == nil {
		return nil
	}
	// Wait reports only the first failure; combine keeps them all, in loader
	// order.
	return multierr.Combine(errs...)
}
