package route

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"roadtrip/internal/model"
	"roadtrip/internal/store"
)

type fakeDirections struct {
	calls int
	raw   RawRoute
	err   error
}

func (f *fakeDirections) Route(ctx context.Context, origin, destination string) (RawRoute, error) {
	f.calls++
	return f.raw, f.err
}

func fiveStepRoute() RawRoute {
	steps := make([]Step, 5)
	for i := range steps {
		steps[i] = Step{Distance: 18000, Start: model.GeoPoint{Lat: 32 + float64(i)*0.1, Lng: 34.8}}
	}
	return RawRoute{Summary: "Route 2", TotalDistance: 90000, Steps: steps}
}

func TestResolveCachesAndIsIdempotent(t *testing.T) {
	dir := &fakeDirections{raw: fiveStepRoute()}
	r := &Resolver{Store: store.NewMemory(), Directions: dir, MaxWaypoints: 4}

	first, err := r.Resolve(context.Background(), "Tel Aviv", "Haifa")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(first.Waypoints) == 0 {
		t.Fatal("no waypoints")
	}
	second, err := r.Resolve(context.Background(), "Tel Aviv", "Haifa")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if dir.calls != 1 {
		t.Fatalf("directions called %d times, want 1", dir.calls)
	}
	if !reflect.DeepEqual(first.Waypoints, second.Waypoints) {
		t.Fatal("cached waypoints differ from first resolution")
	}
}

func TestResolveProviderFailureAborts(t *testing.T) {
	dir := &fakeDirections{err: errors.New("ZERO_RESULTS")}
	r := &Resolver{Store: store.NewMemory(), Directions: dir, MaxWaypoints: 4}
	if _, err := r.Resolve(context.Background(), "Tel Aviv", "Atlantis"); err == nil {
		t.Fatal("expected error")
	}
	if dir.calls != 1 {
		t.Fatalf("provider must not be retried, got %d calls", dir.calls)
	}
}

func TestResolveDegenerateRouteFails(t *testing.T) {
	dir := &fakeDirections{raw: RawRoute{Summary: "none", TotalDistance: 0}}
	r := &Resolver{Store: store.NewMemory(), Directions: dir, MaxWaypoints: 4}
	if _, err := r.Resolve(context.Background(), "a", "b"); !errors.Is(err, ErrNoWaypoints) {
		t.Fatalf("want ErrNoWaypoints, got %v", err)
	}
}

func TestSampleEvenSpacing(t *testing.T) {
	raw := fiveStepRoute()
	got := Sample(raw, 4)
	// interval = 22500m; thresholds 0, 22500, 45000, 67500, 90000 are crossed
	// at steps 1, 2, 3, 4 and 5 (cumulative 18k, 36k, 54k, 72k, 90k).
	if len(got) != 5 {
		t.Fatalf("got %d waypoints, want 5", len(got))
	}
	if got[0] != raw.Steps[0].Start || got[4] != raw.Steps[4].Start {
		t.Fatal("waypoints not anchored to step starts")
	}
}

func TestSampleFloorsMaxWaypoints(t *testing.T) {
	raw := RawRoute{TotalDistance: 100, Steps: []Step{{Distance: 100, Start: model.GeoPoint{Lat: 1, Lng: 2}}}}
	if got := Sample(raw, 0); len(got) != 1 {
		t.Fatalf("got %d waypoints, want 1", len(got))
	}
}
