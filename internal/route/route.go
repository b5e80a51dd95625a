// Package route resolves an (origin, destination) pair into a cached or
// freshly computed route broken into evenly distance-spaced waypoints.
package route

import (
	"context"
	"errors"
	"fmt"

	"roadtrip/internal/cachefirst"
	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
	"roadtrip/internal/store"
)

// RawRoute is what the directions provider returns: the path steps in order,
// the major-road summary, and the total distance.
type RawRoute struct {
	Summary       string
	TotalDistance int // meters
	Steps         []Step
}

// Step is one path segment; Start anchors the waypoint emitted for it.
type Step struct {
	Distance int // meters
	Start    model.GeoPoint
}

// Directions is the external directions provider. A non-success status is an
// error; the resolver never retries it.
type Directions interface {
	Route(ctx context.Context, origin, destination string) (RawRoute, error)
}

// ErrNoWaypoints marks a degenerate route; the trip must be aborted rather
// than searched with an empty waypoint set.
var ErrNoWaypoints = errors.New("no waypoints on route")

type Resolver struct {
	Store        store.Store
	Directions   Directions
	MaxWaypoints int
}

type pair struct{ origin, destination string }

// Resolve returns the route for (origin, destination), calling the directions
// provider at most once per distinct pair for the lifetime of the cache.
func (r *Resolver) Resolve(ctx context.Context, origin, destination string) (model.CachedRoute, error) {
	strategy := cachefirst.Strategy[pair, model.CachedRoute]{
		Lookup: func(ctx context.Context, key pair) (model.CachedRoute, bool, error) {
			cached, err := r.Store.GetRoute(ctx, key.origin, key.destination)
			if errors.Is(err, store.ErrNotFound) {
				metrics.CacheLookups.WithLabelValues("cached_routes", "miss").Inc()
				return model.CachedRoute{}, false, nil
			}
			if err != nil {
				return model.CachedRoute{}, false, err
			}
			metrics.CacheLookups.WithLabelValues("cached_routes", "hit").Inc()
			return cached, true, nil
		},
		Fetch: func(ctx context.Context, key pair) (model.CachedRoute, error) {
			raw, err := r.Directions.Route(ctx, key.origin, key.destination)
			if err != nil {
				return model.CachedRoute{}, fmt.Errorf("directions %s -> %s: %w", key.origin, key.destination, err)
			}
			waypoints := Sample(raw, r.MaxWaypoints)
			if len(waypoints) == 0 {
				return model.CachedRoute{}, ErrNoWaypoints
			}
			return model.CachedRoute{
				Origin:        key.origin,
				Destination:   key.destination,
				Summary:       raw.Summary,
				TotalDistance: raw.TotalDistance,
				Waypoints:     waypoints,
			}, nil
		},
		Persist: func(ctx context.Context, v model.CachedRoute) error {
			return r.Store.PutRoute(ctx, v)
		},
	}
	resolved, _, err := strategy.Resolve(ctx, pair{origin, destination})
	return resolved, err
}

// Sample walks the path steps in order and emits a waypoint each time the
// cumulative distance crosses the next interval threshold, using the step's
// start coordinate. This spaces waypoints evenly by distance, not by step
// count.
func Sample(raw RawRoute, maxWaypoints int) []model.GeoPoint {
	if maxWaypoints < 1 {
		maxWaypoints = 1
	}
	interval := float64(raw.TotalDistance) / float64(maxWaypoints)
	var waypoints []model.GeoPoint
	cumulative := 0.0
	for _, step := range raw.Steps {
		cumulative += float64(step.Distance)
		if cumulative >= interval*float64(len(waypoints)) {
			waypoints = append(waypoints, step.Start)
		}
	}
	return waypoints
}
