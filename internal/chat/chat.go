// Package chat abstracts the messaging surface the bot talks over. The
// production surface is Telegram; a websocket gateway serves dev mode.
package chat

import (
	"context"
	"errors"
)

// Handler receives one inbound user message.
type Handler func(userID int64, userName, text string)

// Sender delivers outbound lines to a user.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// ErrNotConnected is returned when the user has no live connection to
// deliver to.
var ErrNotConnected = errors.New("user not connected")
