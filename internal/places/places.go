// Package places fetches fuel and food stops near route waypoints,
// cache-first against the persistent place store with an external
// nearby-search provider behind it.
package places

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"roadtrip/internal/cachefirst"
	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
	"roadtrip/internal/store"
	"roadtrip/internal/translate"
)

// Candidate is a raw nearby-search result.
type Candidate struct {
	PlaceID        string
	Name           string
	BusinessStatus string
	Location       model.GeoPoint
	Rating         float64
	Vicinity       string
}

// Details is the extended attribute set from a per-place details call.
type Details struct {
	Address              string
	WorkingHours         []string
	ServesAlcohol        bool
	WheelchairAccessible bool
	PriceLevel           int
	Website              string
}

// Searcher is the external place-search provider.
type Searcher interface {
	Nearby(ctx context.Context, at model.GeoPoint, category model.Category) ([]Candidate, error)
	Details(ctx context.Context, placeID string) (Details, error)
}

// Major fuel brands accepted for fuel stops, and name fragments marking
// stations that do not serve private cars.
var (
	fuelBrandAllow = []string{"paz", "delek", "dor", "sonol"}
	fuelBrandDeny  = []string{"oak", "energy"}
)

// validFuelStation accepts only allow-listed major brands and rejects any
// name carrying a deny-listed fragment, case-insensitively on the normalized
// name. The deny list wins.
func validFuelStation(name string) bool {
	lower := strings.ToLower(name)
	allowed := false
	for _, brand := range fuelBrandAllow {
		if strings.Contains(lower, brand) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	for _, deny := range fuelBrandDeny {
		if strings.Contains(lower, deny) {
			return false
		}
	}
	return true
}

func mapsURL(placeID string) string {
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}

type Engine struct {
	Store      store.Store
	Search     Searcher
	Translator translate.Translator
}

// errRejected marks a candidate filtered out by category rules; it never
// leaves Fetch.
var errRejected = errors.New("candidate rejected")

// Fetch returns up to maxPerWaypoint accepted places per waypoint, in
// waypoint order then discovery order. Candidates already cached are reused
// verbatim without re-validation; new ones are translated, filtered,
// optionally enriched with a details call, and persisted. A search failure
// at any waypoint aborts the whole fetch (the category is skipped for this
// trip).
func (e *Engine) Fetch(ctx context.Context, waypoints []model.GeoPoint, category model.Category, wantDetails bool, maxPerWaypoint int) ([]model.PlaceRecord, error) {
	seen := map[string]struct{}{}
	var out []model.PlaceRecord

	strategy := cachefirst.Strategy[Candidate, model.PlaceRecord]{
		Lookup: func(ctx context.Context, c Candidate) (model.PlaceRecord, bool, error) {
			rec, err := e.Store.GetPlace(ctx, category, c.PlaceID)
			if errors.Is(err, store.ErrNotFound) {
				metrics.CacheLookups.WithLabelValues(string(category), "miss").Inc()
				return model.PlaceRecord{}, false, nil
			}
			if err != nil {
				return model.PlaceRecord{}, false, err
			}
			metrics.CacheLookups.WithLabelValues(string(category), "hit").Inc()
			return rec, true, nil
		},
		Fetch: func(ctx context.Context, c Candidate) (model.PlaceRecord, error) {
			return e.build(ctx, c, category, wantDetails)
		},
		Persist: func(ctx context.Context, rec model.PlaceRecord) error {
			return e.Store.PutPlace(ctx, category, rec)
		},
	}

	for _, wp := range waypoints {
		candidates, err := e.Search.Nearby(ctx, wp, category)
		if err != nil {
			return nil, fmt.Errorf("nearby search at %s: %w", wp.Key(), err)
		}
		collected := 0
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c.BusinessStatus), "closed") {
				continue
			}
			if _, dup := seen[c.PlaceID]; dup {
				continue
			}
			rec, _, err := strategy.Resolve(ctx, c)
			if errors.Is(err, errRejected) {
				continue
			}
			if err != nil {
				return nil, err
			}
			seen[c.PlaceID] = struct{}{}
			out = append(out, rec)
			collected++
			if collected >= maxPerWaypoint {
				break
			}
		}
	}
	return out, nil
}

func (e *Engine) build(ctx context.Context, c Candidate, category model.Category, wantDetails bool) (model.PlaceRecord, error) {
	name := strings.ToLower(e.Translator.Translate(ctx, c.Name))
	if name == "" {
		name = strings.ToLower(c.Name)
	}
	if category == model.CategoryFuel && !validFuelStation(name) {
		return model.PlaceRecord{}, errRejected
	}
	rating := c.Rating
	if rating == 0 {
		rating = 1
	}
	vicinity := strings.ToLower(c.Vicinity)
	if vicinity == "" {
		vicinity = "israel"
	}
	rec := model.PlaceRecord{
		PlaceID:   c.PlaceID,
		Name:      name,
		Latitude:  c.Location.Lat,
		Longitude: c.Location.Lng,
		Rating:    rating,
		Vicinity:  vicinity,
		URL:       mapsURL(c.PlaceID),
		Address:   vicinity,
	}
	if wantDetails {
		details, err := e.Search.Details(ctx, c.PlaceID)
		if err != nil {
			// Details are enrichment only; fall back to the coarse vicinity.
			log.Printf("places: details for %s failed: %v", c.PlaceID, err)
			return rec, nil
		}
		if details.Address != "" {
			rec.Address = details.Address
		}
		rec.WorkingHours = details.WorkingHours
		if category == model.CategoryFood {
			rec.ServesAlcohol = details.ServesAlcohol
			rec.WheelchairAccessible = details.WheelchairAccessible
			rec.PriceLevel = details.PriceLevel
			if rec.PriceLevel == 0 {
				rec.PriceLevel = 1
			}
			rec.Website = details.Website
			if rec.Website == "" {
				rec.Website = "www.unknown"
			}
		}
	}
	return rec, nil
}
