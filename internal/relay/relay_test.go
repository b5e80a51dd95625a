package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"roadtrip/internal/broker"
	"roadtrip/internal/model"
)

type fakePlaces struct {
	records map[model.Category][]model.PlaceRecord
	err     error
	calls   []model.Category
	details map[model.Category]bool
}

func (f *fakePlaces) Fetch(_ context.Context, _ []model.GeoPoint, category model.Category, wantDetails bool, _ int) ([]model.PlaceRecord, error) {
	f.calls = append(f.calls, category)
	if f.details == nil {
		f.details = map[model.Category]bool{}
	}
	f.details[category] = wantDetails
	if f.err != nil {
		return nil, f.err
	}
	return f.records[category], nil
}

type fakeAttractions struct {
	records []model.AttractionRecord
	err     error
	calls   int
}

func (f *fakeAttractions) Fetch(_ context.Context, _ []model.GeoPoint, _ string, _ int) ([]model.AttractionRecord, error) {
	f.calls++
	return f.records, f.err
}

type capture struct {
	published map[string][]model.Envelope
}

func (c *capture) Publish(_ context.Context, topic string, payload []byte) error {
	var env model.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	if c.published == nil {
		c.published = map[string][]model.Envelope{}
	}
	c.published[topic] = append(c.published[topic], env)
	return nil
}

func (c *capture) Consume(context.Context, string, string, string, broker.Handler) error {
	return errors.New("not implemented")
}

func request(cats model.CategorySet) []byte {
	req := model.TripRequest{
		UserID: 7, RouteID: "7-abc", Origin: "tel aviv", Destination: "haifa",
		Categories: cats, Summary: "Route 2", TotalDistance: 95000,
		Waypoints: []model.GeoPoint{{Lat: 32.1, Lng: 34.8}},
	}
	data, _ := json.Marshal(req)
	return data
}

func TestProcessFuelOnlyGoesToEnrichment(t *testing.T) {
	bus := &capture{}
	p := &fakePlaces{records: map[model.Category][]model.PlaceRecord{
		model.CategoryFuel: {{PlaceID: "p1", Name: "paz"}},
	}}
	r := &Relay{Bus: bus, Places: p, Attractions: &fakeAttractions{}, MaxPerWaypoint: 2, MaxAttractions: 6}

	if err := r.Process(context.Background(), request(model.CategorySet{Fuel: true})); err != nil {
		t.Fatalf("process: %v", err)
	}
	got := bus.published[broker.TopicEnrichment]
	if len(got) != 1 {
		t.Fatalf("expected 1 enrichment message, got %d", len(got))
	}
	if got[0].PlaceType != model.CategoryFuel || len(got[0].Places) != 1 {
		t.Fatalf("unexpected envelope: %+v", got[0])
	}
	if len(bus.published[broker.TopicResults]) != 0 {
		t.Fatalf("fuel results must not go straight to results topic")
	}
	if p.details[model.CategoryFuel] {
		t.Fatalf("fuel fetch must not request details")
	}
}

func TestProcessFoodRequestsDetails(t *testing.T) {
	bus := &capture{}
	p := &fakePlaces{records: map[model.Category][]model.PlaceRecord{
		model.CategoryFood: {{PlaceID: "r1", Name: "cafe"}},
	}}
	r := &Relay{Bus: bus, Places: p, Attractions: &fakeAttractions{}, MaxPerWaypoint: 2, MaxAttractions: 6}

	if err := r.Process(context.Background(), request(model.CategorySet{Food: true})); err != nil {
		t.Fatalf("process: %v", err)
	}
	got := bus.published[broker.TopicResults]
	if len(got) != 1 || got[0].PlaceType != model.CategoryFood {
		t.Fatalf("unexpected results: %+v", got)
	}
	if !p.details[model.CategoryFood] {
		t.Fatalf("food fetch must request details")
	}
}

func TestProcessDirectTripEmitsNoneMarker(t *testing.T) {
	bus := &capture{}
	r := &Relay{Bus: bus, Places: &fakePlaces{}, Attractions: &fakeAttractions{}, MaxPerWaypoint: 2, MaxAttractions: 6}

	if err := r.Process(context.Background(), request(model.CategorySet{})); err != nil {
		t.Fatalf("process: %v", err)
	}
	got := bus.published[broker.TopicResults]
	if len(got) != 1 {
		t.Fatalf("expected exactly one results message, got %d", len(got))
	}
	if got[0].PlaceType != model.CategoryNone || len(got[0].Places) != 0 || len(got[0].Attractions) != 0 {
		t.Fatalf("unexpected none envelope: %+v", got[0])
	}
}

func TestProcessCategoryFailureDoesNotAbortOthers(t *testing.T) {
	bus := &capture{}
	p := &fakePlaces{err: errors.New("provider down")}
	a := &fakeAttractions{records: []model.AttractionRecord{{Name: "zoo"}}}
	r := &Relay{Bus: bus, Places: p, Attractions: a, MaxPerWaypoint: 2, MaxAttractions: 6}

	cats := model.CategorySet{Fuel: true, Attractions: true}
	if err := r.Process(context.Background(), request(cats)); err != nil {
		t.Fatalf("process: %v", err)
	}
	got := bus.published[broker.TopicResults]
	if len(got) != 1 || got[0].PlaceType != model.CategoryAttraction {
		t.Fatalf("expected attraction results despite fuel failure, got %+v", got)
	}
}

func TestProcessDropsMalformedPayload(t *testing.T) {
	r := &Relay{Bus: &capture{}, Places: &fakePlaces{}, Attractions: &fakeAttractions{}}
	if err := r.Process(context.Background(), []byte("{not json")); err != nil {
		t.Fatalf("malformed payload must be dropped without error, got %v", err)
	}
}

func TestSummaryLine(t *testing.T) {
	req := model.TripRequest{Origin: "tel aviv", Destination: "haifa", Summary: "Route 2", TotalDistance: 95000}
	got := Summary(req)
	want := "route summary: from tel-aviv to haifa - go through Route 2, total-distance = 95km"
	if got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}

func TestRenderNoneEnvelope(t *testing.T) {
	env := model.Envelope{
		TripRequest: model.TripRequest{Origin: "dimona", Destination: "haifa", Summary: "Route 6", TotalDistance: 210000},
		PlaceType:   model.CategoryNone,
	}
	lines := Render(env)
	if len(lines) != 2 {
		t.Fatalf("expected summary plus notice, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "route summary:") {
		t.Fatalf("first line must be the summary, got %q", lines[0])
	}
}

func TestRenderStationServices(t *testing.T) {
	yes, no := true, false
	env := model.Envelope{
		TripRequest: model.TripRequest{Origin: "a", Destination: "b", Summary: "Route 2", TotalDistance: 1000},
		PlaceType:   model.CategoryFuel,
		Places: []model.PlaceRecord{{
			Name: "paz junction", Address: "israel", Rating: 4.2, URL: "https://maps/x",
			Petrol98: &yes, CarWash: &no, ConvenientStore: &yes,
		}},
	}
	lines := Render(env)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	line := lines[2]
	if !strings.Contains(line, "petrol 98") || !strings.Contains(line, "convenient store") {
		t.Fatalf("missing services in %q", line)
	}
	if strings.Contains(line, "car wash") {
		t.Fatalf("false service flag rendered in %q", line)
	}
}
