// Package translate normalizes place names to English. Translation is best
// effort: any failure degrades to the original text and is never surfaced to
// the caller.
package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"roadtrip/internal/metrics"
)

// Translator converts text to English. Implementations must not fail: on any
// error they return the input unchanged.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Noop returns input unchanged; used in tests and when translation is
// disabled.
type Noop struct{}

func (Noop) Translate(ctx context.Context, text string) string { return text }

var asciiText = regexp.MustCompile(`^[A-Za-z0-9\s.,!?'"|-]+$`)

// mostlyEnglish reports whether text needs no translation.
func mostlyEnglish(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "n/a", "na", "unknown", "none":
		return true
	}
	return asciiText.MatchString(text)
}

// Client calls the public translation endpoint. Calls are paced with a rate
// limiter: the translator upstream throttles bursts with 5xx errors.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	limiter  *rate.Limiter
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		Endpoint: "https://translate.googleapis.com/translate_a/single",
		limiter:  rate.NewLimiter(rate.Limit(10), 5),
	}
}

func (c *Client) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if mostlyEnglish(text) {
		return text
	}
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.TranslationFallbacks.Inc()
		return text
	}
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", "en")
	q.Set("dt", "t")
	q.Set("q", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		metrics.TranslationFallbacks.Inc()
		return text
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.TranslationFallbacks.Inc()
		return text
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.TranslationFallbacks.Inc()
		return text
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TranslationFallbacks.Inc()
		return text
	}
	out := parseResponse(body)
	if out == "" {
		metrics.TranslationFallbacks.Inc()
		return text
	}
	return out
}

// parseResponse extracts the translated segments from the nested-array
// response shape: [[["translated","source",...],...],...]
func parseResponse(body []byte) string {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil || len(outer) == 0 {
		return ""
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return ""
	}
	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(seg[0], &s); err == nil {
			b.WriteString(s)
		}
	}
	return b.String()
}
