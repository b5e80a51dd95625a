package attractions

import (
	"context"
	"fmt"
	"testing"

	"roadtrip/internal/model"
	"roadtrip/internal/store"
	"roadtrip/internal/translate"
)

type fakeDiscovery struct {
	items map[string][]Item // waypoint key -> results
	calls map[string]int
}

func newFakeDiscovery() *fakeDiscovery {
	return &fakeDiscovery{items: map[string][]Item{}, calls: map[string]int{}}
}

func (f *fakeDiscovery) Discover(ctx context.Context, at model.GeoPoint, limit int) ([]Item, error) {
	f.calls[at.Key()]++
	items := f.items[at.Key()]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func wp(lat, lng float64) model.GeoPoint { return model.GeoPoint{Lat: lat, Lng: lng} }

func item(name string, lat, lng float64) Item {
	return Item{Title: name, Position: wp(lat, lng), Category: "Museum", OpeningHours: "N/A"}
}

func newEngine(d Discoverer) *Engine {
	return &Engine{Store: store.NewMemory(), Discovery: d, Translator: translate.Noop{}}
}

func TestFetchUniqueCoordinates(t *testing.T) {
	w1, w2 := wp(32, 34.8), wp(32.5, 34.9)
	d := newFakeDiscovery()
	d.items[w1.Key()] = []Item{item("a", 32.01, 34.81), item("a again", 32.01, 34.81), item("b", 32.02, 34.82)}
	d.items[w2.Key()] = []Item{item("c", 32.51, 34.91)}
	e := newEngine(d)

	got, err := e.Fetch(context.Background(), []model.GeoPoint{w1, w2}, "r1", 4)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	coords := map[string]int{}
	for _, a := range got {
		coords[a.Coordinate().Key()]++
	}
	for k, n := range coords {
		if n > 1 {
			t.Fatalf("coordinate %s returned %d times", k, n)
		}
	}
}

func TestFetchBoundedRetry(t *testing.T) {
	w := wp(32, 34.8)
	d := newFakeDiscovery() // no items anywhere
	e := newEngine(d)

	got, err := e.Fetch(context.Background(), []model.GeoPoint{w}, "r1", 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no attractions, got %d", len(got))
	}
	if d.calls[w.Key()] != 3 {
		t.Fatalf("provider called %d times for empty waypoint, want 3", d.calls[w.Key()])
	}
}

func TestFetchSpreadsBudgetAcrossWaypoints(t *testing.T) {
	w1, w2, w3 := wp(32, 34.8), wp(32.3, 34.85), wp(32.6, 34.9)
	d := newFakeDiscovery()
	for i, w := range []model.GeoPoint{w1, w2, w3} {
		var items []Item
		for j := 0; j < 4; j++ {
			items = append(items, item(fmt.Sprintf("a%d-%d", i, j), 32+float64(i)+float64(j)*0.001, 34.8))
		}
		d.items[w.Key()] = items
	}
	e := newEngine(d)

	got, err := e.Fetch(context.Background(), []model.GeoPoint{w1, w2, w3}, "r1", 6)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("got %d attractions, want 6", len(got))
	}
	// per-waypoint share is 2, and all three waypoints have plenty, so the
	// first pass fills the budget evenly.
	perAnchor := map[string]int{}
	for _, a := range got {
		perAnchor[a.Anchor.Key()]++
	}
	for k, n := range perAnchor {
		if n != 2 {
			t.Fatalf("anchor %s contributed %d, want 2", k, n)
		}
	}
}

func TestFetchCacheShortCircuitsProvider(t *testing.T) {
	w := wp(32, 34.8)
	st := store.NewMemory()
	cached := model.AttractionRecord{Name: "old favorite", Latitude: 32.01, Longitude: 34.81, Anchor: w, Category: "Museum"}
	if err := st.PutAttraction(context.Background(), cached); err != nil {
		t.Fatal(err)
	}
	d := newFakeDiscovery()
	e := &Engine{Store: st, Discovery: d, Translator: translate.Noop{}}

	got, err := e.Fetch(context.Background(), []model.GeoPoint{w}, "r2", 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Name != "old favorite" {
		t.Fatalf("cache not drained: %+v", got)
	}
	if got[0].RouteID != "r2" {
		t.Fatalf("cached record not retagged with route: %s", got[0].RouteID)
	}
	if d.calls[w.Key()] != 0 {
		t.Fatalf("provider called %d times despite cache hit", d.calls[w.Key()])
	}
}

func TestFetchTerminatesWithoutProgress(t *testing.T) {
	// Two waypoints sharing the same single attraction: after it is taken
	// once, further passes make no progress and must not spin.
	w1, w2 := wp(32, 34.8), wp(32.1, 34.8)
	d := newFakeDiscovery()
	shared := item("only one", 32.05, 34.8)
	d.items[w1.Key()] = []Item{shared}
	d.items[w2.Key()] = []Item{shared}
	e := newEngine(d)

	got, err := e.Fetch(context.Background(), []model.GeoPoint{w1, w2}, "r1", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d, want 1", len(got))
	}
}

func TestFetchAudienceMapping(t *testing.T) {
	w := wp(32, 34.8)
	d := newFakeDiscovery()
	d.items[w.Key()] = []Item{{Title: "luna park", Position: wp(32.01, 34.81), Category: "Amusement Park"}}
	e := newEngine(d)

	got, err := e.Fetch(context.Background(), []model.GeoPoint{w}, "r1", 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("fetch: %v (%d)", err, len(got))
	}
	if got[0].AudienceType != "Children" {
		t.Fatalf("audience: got %s", got[0].AudienceType)
	}
}
