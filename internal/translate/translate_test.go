package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		HTTP:     srv.Client(),
		Endpoint: srv.URL,
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
}

func TestTranslateSkipsEnglish(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()
	c := newTestClient(srv)

	if got := c.Translate(context.Background(), "Paz Station 12"); got != "Paz Station 12" {
		t.Fatalf("got %q", got)
	}
	if called {
		t.Fatal("English text should not hit the endpoint")
	}
	if got := c.Translate(context.Background(), "N/A"); got != "N/A" {
		t.Fatalf("got %q", got)
	}
}

func TestTranslateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[["gas station paz","תחנת דלק פז",null,null]],null,"iw"]`))
	}))
	defer srv.Close()
	c := newTestClient(srv)

	if got := c.Translate(context.Background(), "תחנת דלק פז"); got != "gas station paz" {
		t.Fatalf("got %q", got)
	}
}

func TestTranslateFailureReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := newTestClient(srv)

	if got := c.Translate(context.Background(), "מוזיאון"); got != "מוזיאון" {
		t.Fatalf("failure must pass text through, got %q", got)
	}
}

func TestTranslateTimeoutReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()
	c := newTestClient(srv)
	c.HTTP = &http.Client{Timeout: time.Millisecond}

	if got := c.Translate(context.Background(), "מוזיאון"); got != "מוזיאון" {
		t.Fatalf("timeout must pass text through, got %q", got)
	}
}
