// Package cachefirst implements the resolve-or-fetch-and-persist pattern
// shared by the route resolver and the place engines: consult a persistent
// cache first, call the external provider only on a miss, and persist the
// fetched value before returning it.
package cachefirst

import "context"

// Strategy is parameterized by the dedup key and value types. Lookup reports
// a miss with found=false; errors from any step abort the resolution.
type Strategy[K, V any] struct {
	Lookup  func(ctx context.Context, key K) (V, bool, error)
	Fetch   func(ctx context.Context, key K) (V, error)
	Persist func(ctx context.Context, v V) error
}

// Resolve returns the cached value verbatim on a hit. On a miss it fetches,
// persists, and returns the fresh value. fromCache tells the caller which
// path was taken.
func (s Strategy[K, V]) Resolve(ctx context.Context, key K) (v V, fromCache bool, err error) {
	v, found, err := s.Lookup(ctx, key)
	if err != nil {
		return v, false, err
	}
	if found {
		return v, true, nil
	}
	v, err = s.Fetch(ctx, key)
	if err != nil {
		return v, false, err
	}
	if s.Persist != nil {
		if err := s.Persist(ctx, v); err != nil {
			return v, false, err
		}
	}
	return v, false, nil
}
