// Package attractions fetches tourist attractions along a route. Unlike the
// fuel/food engine it spreads a fixed total across all waypoints and dedups
// on coordinates, since the discovery provider exposes no stable ids.
package attractions

import (
	"context"
	"log"

	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
	"roadtrip/internal/store"
	"roadtrip/internal/translate"
)

// Item is a raw discovery result.
type Item struct {
	Title        string
	Position     model.GeoPoint
	Address      string
	Category     string
	OpeningHours string
	Popularity   float64
}

// Discoverer is the external attraction-search provider.
type Discoverer interface {
	Discover(ctx context.Context, at model.GeoPoint, limit int) ([]Item, error)
}

// audienceFor maps provider categories to a target audience.
var audienceFor = map[string]string{
	"Amusement Park":      "Children",
	"Zoo":                 "Children",
	"Aquarium":            "Children",
	"Museum":              "Family",
	"Historical Landmark": "Family",
	"Historical Monument": "Family",
	"Theme Park":          "Family",
	"Water Park":          "Family",
	"Tourist Attraction":  "Family",
	"Nightlife":           "Adults",
	"Casino":              "Adults",
	"Bar":                 "Adults",
	"Club":                "Adults",
}

// retryRounds bounds provider calls per waypoint within one invocation.
const retryRounds = 3

type Engine struct {
	Store      store.Store
	Discovery  Discoverer
	Translator translate.Translator
}

// Fetch collects up to maxResults unique attractions, visiting waypoints
// round-robin with a per-waypoint retry budget. Each visit drains the cache
// for the waypoint's anchor first and only then calls the provider, with the
// search limit growing by one per retry round. The loop wraps around until
// the budget is filled or a full pass over all waypoints yields no new
// unique attraction.
func (e *Engine) Fetch(ctx context.Context, waypoints []model.GeoPoint, routeID string, maxResults int) ([]model.AttractionRecord, error) {
	if len(waypoints) == 0 || maxResults <= 0 {
		return nil, nil
	}
	perWaypoint := maxResults / len(waypoints)
	if perWaypoint < 1 {
		perWaypoint = 1
	}

	seen := map[string]struct{}{}
	budgets := make([]int, len(waypoints))
	for i := range budgets {
		budgets[i] = retryRounds
	}
	remaining := maxResults
	var out []model.AttractionRecord

	for remaining > 0 {
		progress := false
		for i, wp := range waypoints {
			if remaining == 0 {
				break
			}
			added := e.visit(ctx, wp, routeID, perWaypoint, &remaining, &budgets[i], seen, &out)
			if added {
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return out, nil
}

// visit runs the retry rounds for one waypoint. Reports whether any new
// unique attraction was added.
func (e *Engine) visit(ctx context.Context, wp model.GeoPoint, routeID string, perWaypoint int, remaining, budget *int, seen map[string]struct{}, out *[]model.AttractionRecord) bool {
	target := perWaypoint
	if target > *remaining {
		target = *remaining
	}
	got := 0
	for round := 0; round < retryRounds && got < target; round++ {
		// Cache first: attractions anchored at this exact waypoint.
		cached, err := e.Store.AttractionsByAnchor(ctx, wp)
		if err == nil {
			for _, a := range cached {
				if got >= target {
					break
				}
				key := a.Coordinate().Key()
				if _, dup := seen[key]; dup {
					continue
				}
				metrics.CacheLookups.WithLabelValues("attractions", "hit").Inc()
				seen[key] = struct{}{}
				a.RouteID = routeID
				*out = append(*out, a)
				got++
				*remaining--
			}
		}
		if got >= target || *budget == 0 {
			break
		}
		*budget--
		items, err := e.Discovery.Discover(ctx, wp, perWaypoint+round+1)
		if err != nil {
			// Provider errors consume a retry round; the next round or
			// waypoint carries on.
			log.Printf("attractions: discover at %s: %v", wp.Key(), err)
			continue
		}
		for _, item := range items {
			if got >= target {
				break
			}
			key := item.Position.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			if exists, err := e.Store.AttractionExists(ctx, item.Position); err == nil && exists {
				seen[key] = struct{}{}
				continue
			}
			rec := e.record(ctx, item, wp, routeID)
			if err := e.Store.PutAttraction(ctx, rec); err != nil {
				log.Printf("attractions: persist %s: %v", rec.Name, err)
				continue
			}
			seen[key] = struct{}{}
			*out = append(*out, rec)
			got++
			*remaining--
		}
	}
	return got > 0
}

func (e *Engine) record(ctx context.Context, item Item, anchor model.GeoPoint, routeID string) model.AttractionRecord {
	audience := audienceFor[item.Category]
	if audience == "" {
		audience = "General"
	}
	return model.AttractionRecord{
		RouteID:      routeID,
		Name:         e.Translator.Translate(ctx, item.Title),
		Latitude:     item.Position.Lat,
		Longitude:    item.Position.Lng,
		Anchor:       anchor,
		Address:      e.Translator.Translate(ctx, item.Address),
		Category:     e.Translator.Translate(ctx, item.Category),
		AudienceType: audience,
		Popularity:   item.Popularity,
		OpeningHours: e.Translator.Translate(ctx, item.OpeningHours),
	}
}
