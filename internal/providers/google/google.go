// Package google wraps the Google Directions and Places web services. All
// calls use a fixed timeout and surface non-success API statuses as errors.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
	"roadtrip/internal/places"
	"roadtrip/internal/route"
)

const (
	defaultDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	defaultNearbyURL     = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	defaultDetailsURL    = "https://maps.googleapis.com/maps/api/place/details/json"
)

type Client struct {
	APIKey string
	HTTP   *http.Client
	Radius int // meters, nearby search

	DirectionsURL string
	NearbyURL     string
	DetailsURL    string
}

func NewClient(apiKey string, timeout time.Duration, radius int) *Client {
	return &Client{
		APIKey:        apiKey,
		HTTP:          &http.Client{Timeout: timeout},
		Radius:        radius,
		DirectionsURL: defaultDirectionsURL,
		NearbyURL:     defaultNearbyURL,
		DetailsURL:    defaultDetailsURL,
	}
}

// Route fetches driving directions and flattens the first route's first leg.
func (c *Client) Route(ctx context.Context, origin, destination string) (route.RawRoute, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("key", c.APIKey)

	var resp struct {
		Status string `json:"status"`
		Routes []struct {
			Summary string `json:"summary"`
			Legs    []struct {
				Distance struct {
					Value int `json:"value"`
				} `json:"distance"`
				Steps []struct {
					Distance struct {
						Value int `json:"value"`
					} `json:"distance"`
					StartLocation model.GeoPoint `json:"start_location"`
				} `json:"steps"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := c.get(ctx, "google_directions", c.DirectionsURL, q, &resp); err != nil {
		return route.RawRoute{}, err
	}
	if resp.Status != "OK" || len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return route.RawRoute{}, fmt.Errorf("directions %s -> %s: status %s", origin, destination, resp.Status)
	}
	leg := resp.Routes[0].Legs[0]
	raw := route.RawRoute{Summary: resp.Routes[0].Summary, TotalDistance: leg.Distance.Value}
	for _, s := range leg.Steps {
		raw.Steps = append(raw.Steps, route.Step{Distance: s.Distance.Value, Start: s.StartLocation})
	}
	return raw, nil
}

// Nearby searches places of the category's type around a point. ZERO_RESULTS
// is an empty answer, not an error.
func (c *Client) Nearby(ctx context.Context, at model.GeoPoint, category model.Category) ([]places.Candidate, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", at.Lat, at.Lng))
	q.Set("radius", strconv.Itoa(c.Radius))
	q.Set("type", string(category))
	q.Set("key", c.APIKey)

	var resp struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID        string `json:"place_id"`
			Name           string `json:"name"`
			BusinessStatus string `json:"business_status"`
			Geometry       struct {
				Location model.GeoPoint `json:"location"`
			} `json:"geometry"`
			Rating   float64 `json:"rating"`
			Vicinity string  `json:"vicinity"`
		} `json:"results"`
	}
	if err := c.get(ctx, "google_places", c.NearbyURL, q, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("nearby %s at %s: status %s", category, at.Key(), resp.Status)
	}
	out := make([]places.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, places.Candidate{
			PlaceID:        r.PlaceID,
			Name:           r.Name,
			BusinessStatus: r.BusinessStatus,
			Location:       r.Geometry.Location,
			Rating:         r.Rating,
			Vicinity:       r.Vicinity,
		})
	}
	return out, nil
}

// Details fetches the detail fields used for restaurant listings.
func (c *Client) Details(ctx context.Context, placeID string) (places.Details, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "formatted_address,opening_hours,serves_beer,serves_wine,wheelchair_accessible_entrance,price_level,website")
	q.Set("key", c.APIKey)

	var resp struct {
		Status string `json:"status"`
		Result struct {
			FormattedAddress string `json:"formatted_address"`
			OpeningHours     struct {
				WeekdayText []string `json:"weekday_text"`
			} `json:"opening_hours"`
			ServesBeer                   bool   `json:"serves_beer"`
			ServesWine                   bool   `json:"serves_wine"`
			WheelchairAccessibleEntrance bool   `json:"wheelchair_accessible_entrance"`
			PriceLevel                   int    `json:"price_level"`
			Website                      string `json:"website"`
		} `json:"result"`
	}
	if err := c.get(ctx, "google_places", c.DetailsURL, q, &resp); err != nil {
		return places.Details{}, err
	}
	if resp.Status != "OK" {
		return places.Details{}, fmt.Errorf("details %s: status %s", placeID, resp.Status)
	}
	return places.Details{
		Address:              resp.Result.FormattedAddress,
		WorkingHours:         resp.Result.OpeningHours.WeekdayText,
		ServesAlcohol:        resp.Result.ServesBeer || resp.Result.ServesWine,
		WheelchairAccessible: resp.Result.WheelchairAccessibleEntrance,
		PriceLevel:           resp.Result.PriceLevel,
		Website:              resp.Result.Website,
	}, nil
}

func (c *Client) get(ctx context.Context, provider, base string, q url.Values, out any) error {
	start := time.Now()
	err := c.doGet(ctx, base, q, out)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderCalls.WithLabelValues(provider, status).Inc()
	metrics.ProviderLatency.WithLabelValues(provider).Observe(float64(time.Since(start).Milliseconds()))
	return err
}

func (c *Client) doGet(ctx context.Context, base string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google: unexpected http status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
