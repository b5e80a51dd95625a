package chat

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestGatewayRoundTrip(t *testing.T) {
	type inbound struct {
		userID int64
		name   string
		text   string
	}
	got := make(chan inbound, 1)
	g := NewGateway(func(userID int64, name, text string) {
		got <- inbound{userID, name, text}
	})
	srv := httptest.NewServer(g)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user_id=42&name=dana"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("tel aviv")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case in := <-got:
		if in.userID != 42 || in.name != "dana" || in.text != "tel aviv" {
			t.Fatalf("unexpected inbound: %+v", in)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for inbound message")
	}

	if err := g.Send(context.Background(), 42, "where to?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "where to?" {
		t.Fatalf("outbound = %q", data)
	}
}

func TestGatewaySendWithoutConnection(t *testing.T) {
	g := NewGateway(func(int64, string, string) {})
	if err := g.Send(context.Background(), 1, "hi"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestGatewayRejectsMissingUserID(t *testing.T) {
	g := NewGateway(func(int64, string, string) {})
	srv := httptest.NewServer(g)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatalf("expected handshake failure without user_id")
	}
}
