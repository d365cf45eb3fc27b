package synth

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

// Conn is the subset of the websocket connection the session needs.
// Tests substitute a scripted implementation.
type Conn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens a duplex connection to the synthesis backend.
type Dialer func(ctx context.Context, url string, header http.Header) (Conn, error)

// DefaultDialer dials with gorilla's websocket client.
func DefaultDialer(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
