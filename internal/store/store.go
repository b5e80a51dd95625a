package store

import (
	"context"
	"errors"

	"roadtrip/internal/model"
)

// Store is the persistence interface shared by the pipeline services. It
// covers the route cache, the per-category place caches, the attraction
// cache, and the read-only gas-station reference table.
type Store interface {
	// Route cache, keyed by (origin, destination). A route is computed from
	// the directions provider at most once per distinct pair.
	GetRoute(ctx context.Context, origin, destination string) (model.CachedRoute, error)
	PutRoute(ctx context.Context, r model.CachedRoute) error

	// Place cache per category (fuel, food), keyed by external place id.
	GetPlace(ctx context.Context, category model.Category, placeID string) (model.PlaceRecord, error)
	PutPlace(ctx context.Context, category model.Category, p model.PlaceRecord) error

	// Attraction cache, keyed by coordinate and indexed by anchor waypoint.
	AttractionsByAnchor(ctx context.Context, anchor model.GeoPoint) ([]model.AttractionRecord, error)
	AttractionExists(ctx context.Context, at model.GeoPoint) (bool, error)
	PutAttraction(ctx context.Context, a model.AttractionRecord) error

	// Static reference seeded offline; read-only here.
	StationReference(ctx context.Context, at model.GeoPoint) (model.StationReference, error)

	Close() error
}

var ErrNotFound = errors.New("not found")
