package store

import (
	"context"
	"sync"

	"roadtrip/internal/model"
)

// Memory is an in-memory Store used in dev mode and tests.
type Memory struct {
	mu          sync.Mutex
	routes      map[string]model.CachedRoute          // origin|destination
	places      map[model.Category]map[string]model.PlaceRecord // category -> place_id
	attractions map[string]model.AttractionRecord     // coordinate key
	byAnchor    map[string][]string                   // anchor key -> coordinate keys
	stations    map[string]model.StationReference     // coordinate key
}

func NewMemory() *Memory {
	return &Memory{
		routes:      map[string]model.CachedRoute{},
		places:      map[model.Category]map[string]model.PlaceRecord{},
		attractions: map[string]model.AttractionRecord{},
		byAnchor:    map[string][]string{},
		stations:    map[string]model.StationReference{},
	}
}

func routeKey(origin, destination string) string { return origin + "|" + destination }

func (m *Memory) GetRoute(ctx context.Context, origin, destination string) (model.CachedRoute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[routeKey(origin, destination)]
	if !ok {
		return model.CachedRoute{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) PutRoute(ctx context.Context, r model.CachedRoute) error {
	m.mu.Lock()
	m.routes[routeKey(r.Origin, r.Destination)] = r
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetPlace(ctx context.Context, category model.Category, placeID string) (model.PlaceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.places[category][placeID]
	if !ok {
		return model.PlaceRecord{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) PutPlace(ctx context.Context, category model.Category, p model.PlaceRecord) error {
	m.mu.Lock()
	if m.places[category] == nil {
		m.places[category] = map[string]model.PlaceRecord{}
	}
	m.places[category][p.PlaceID] = p
	m.mu.Unlock()
	return nil
}

func (m *Memory) AttractionsByAnchor(ctx context.Context, anchor model.GeoPoint) ([]model.AttractionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AttractionRecord
	for _, ck := range m.byAnchor[anchor.Key()] {
		if a, ok := m.attractions[ck]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) AttractionExists(ctx context.Context, at model.GeoPoint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.attractions[at.Key()]
	return ok, nil
}

func (m *Memory) PutAttraction(ctx context.Context, a model.AttractionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ck := a.Coordinate().Key()
	if _, exists := m.attractions[ck]; exists {
		return nil
	}
	m.attractions[ck] = a
	ak := a.Anchor.Key()
	m.byAnchor[ak] = append(m.byAnchor[ak], ck)
	return nil
}

func (m *Memory) StationReference(ctx context.Context, at model.GeoPoint) (model.StationReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stations[at.Key()]
	if !ok {
		return model.StationReference{}, ErrNotFound
	}
	return s, nil
}

// SeedStation loads a reference row; used by tests and dev fixtures in place
// of the offline seeding job.
func (m *Memory) SeedStation(s model.StationReference) {
	m.mu.Lock()
	m.stations[model.GeoPoint{Lat: s.Latitude, Lng: s.Longitude}.Key()] = s
	m.mu.Unlock()
}

func (m *Memory) Close() error { return nil }
