package chat

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

// Gateway is a websocket chat surface for dev mode. Clients connect with
// ?user_id=N&name=X and exchange plain text frames.
type Gateway struct {
	Handler  Handler
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[int64]*websocket.Conn
}

func NewGateway(h Handler) *Gateway {
	return &Gateway{
		Handler:  h,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    map[int64]*websocket.Conn{},
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	g.mu.Lock()
	if old := g.conns[userID]; old != nil {
		old.Close()
	}
	g.conns[userID] = conn
	g.mu.Unlock()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if kind != websocket.TextMessage {
			continue
		}
		g.Handler(userID, name, string(data))
	}

	g.mu.Lock()
	if g.conns[userID] == conn {
		delete(g.conns, userID)
	}
	g.mu.Unlock()
	conn.Close()
}

func (g *Gateway) Send(ctx context.Context, userID int64, text string) error {
	g.mu.Lock()
	conn := g.conns[userID]
	g.mu.Unlock()
	if conn == nil {
		log.Printf("chat: user %d not connected, dropping message", userID)
		return ErrNotConnected
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}
