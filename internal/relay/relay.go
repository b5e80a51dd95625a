// Package relay routes a completed trip request through the processing
// topics: fuel results go to the intermediate enrichment stage, food and
// attraction results straight to the results topic, and a trip with nothing
// to report still yields a "none" marker so the requester gets a route
// summary.
package relay

import (
	"context"
	"encoding/json"
	"log"

	"roadtrip/internal/broker"
	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
)

// PlaceFetcher is the fuel/food engine.
type PlaceFetcher interface {
	Fetch(ctx context.Context, waypoints []model.GeoPoint, category model.Category, wantDetails bool, maxPerWaypoint int) ([]model.PlaceRecord, error)
}

// AttractionFetcher is the attraction engine.
type AttractionFetcher interface {
	Fetch(ctx context.Context, waypoints []model.GeoPoint, routeID string, maxResults int) ([]model.AttractionRecord, error)
}

type Relay struct {
	Bus            broker.Bus
	Places         PlaceFetcher
	Attractions    AttractionFetcher
	MaxPerWaypoint int
	MaxAttractions int
}

// Process handles one intake message. Category failures abort only that
// category; publish and persistence failures return an error so the message
// stays unacknowledged for redelivery. A malformed payload is dropped.
func (r *Relay) Process(ctx context.Context, payload []byte) error {
	var req model.TripRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("relay: dropping malformed trip request: %v", err)
		return nil
	}
	sent := false

	if req.Categories.Fuel {
		// Fuel data from the search provider is sparse; it is joined with
		// the static station reference downstream before final delivery.
		places, err := r.Places.Fetch(ctx, req.Waypoints, model.CategoryFuel, false, r.MaxPerWaypoint)
		switch {
		case err != nil:
			log.Printf("relay: fuel fetch for route %s: %v", req.RouteID, err)
		case len(places) > 0:
			if err := r.publish(ctx, broker.TopicEnrichment, model.Envelope{TripRequest: req, PlaceType: model.CategoryFuel, Places: places}); err != nil {
				return err
			}
			sent = true
		}
	}

	if req.Categories.Food {
		places, err := r.Places.Fetch(ctx, req.Waypoints, model.CategoryFood, true, r.MaxPerWaypoint)
		switch {
		case err != nil:
			log.Printf("relay: food fetch for route %s: %v", req.RouteID, err)
		case len(places) > 0:
			if err := r.publish(ctx, broker.TopicResults, model.Envelope{TripRequest: req, PlaceType: model.CategoryFood, Places: places}); err != nil {
				return err
			}
			sent = true
		}
	}

	if req.Categories.Attractions {
		found, err := r.Attractions.Fetch(ctx, req.Waypoints, req.RouteID, r.MaxAttractions)
		switch {
		case err != nil:
			log.Printf("relay: attraction fetch for route %s: %v", req.RouteID, err)
		case len(found) > 0:
			if err := r.publish(ctx, broker.TopicResults, model.Envelope{TripRequest: req, PlaceType: model.CategoryAttraction, Attractions: found}); err != nil {
				return err
			}
			sent = true
		}
	}

	if !sent {
		return r.publish(ctx, broker.TopicResults, model.Envelope{TripRequest: req, PlaceType: model.CategoryNone})
	}
	return nil
}

func (r *Relay) publish(ctx context.Context, topic string, env model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := r.Bus.Publish(ctx, topic, data); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues(topic, string(env.PlaceType)).Inc()
	return nil
}
