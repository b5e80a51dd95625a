// Package here wraps the HERE discover API used for attraction search.
package here

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"roadtrip/internal/attractions"
	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
)

const defaultDiscoverURL = "https://discover.search.hereapi.com/v1/discover"

// query is fixed; the engine varies only the anchor point and the limit.
const discoverQuery = "tourist attraction"

type Client struct {
	APIKey      string
	HTTP        *http.Client
	DiscoverURL string
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{APIKey: apiKey, HTTP: &http.Client{Timeout: timeout}, DiscoverURL: defaultDiscoverURL}
}

// Discover searches attractions around a point, at most limit results.
func (c *Client) Discover(ctx context.Context, at model.GeoPoint, limit int) ([]attractions.Item, error) {
	q := url.Values{}
	q.Set("at", fmt.Sprintf("%f,%f", at.Lat, at.Lng))
	q.Set("q", discoverQuery)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("apiKey", c.APIKey)

	start := time.Now()
	items, err := c.discover(ctx, q)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderCalls.WithLabelValues("here_discover", status).Inc()
	metrics.ProviderLatency.WithLabelValues("here_discover").Observe(float64(time.Since(start).Milliseconds()))
	return items, err
}

func (c *Client) discover(ctx context.Context, q url.Values) ([]attractions.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DiscoverURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("here: unexpected http status %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			Title    string         `json:"title"`
			Position model.GeoPoint `json:"position"`
			Address  struct {
				Label string `json:"label"`
			} `json:"address"`
			Categories []struct {
				Name string `json:"name"`
			} `json:"categories"`
			OpeningHours []struct {
				Text []string `json:"text"`
			} `json:"openingHours"`
			Popularity float64 `json:"popularity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := make([]attractions.Item, 0, len(body.Items))
	for _, it := range body.Items {
		item := attractions.Item{
			Title:      it.Title,
			Position:   it.Position,
			Address:    it.Address.Label,
			Popularity: it.Popularity,
		}
		if len(it.Categories) > 0 {
			item.Category = it.Categories[0].Name
		}
		if len(it.OpeningHours) > 0 && len(it.OpeningHours[0].Text) > 0 {
			item.OpeningHours = it.OpeningHours[0].Text[0]
		}
		out = append(out, item)
	}
	return out, nil
}
