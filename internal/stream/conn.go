package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// MessageHandler receives each text frame a client sends. ctx is cancelled
// when the connection closes.
type MessageHandler func(ctx context.Context, client *Client, data []byte)

// Upgrader returns a websocket upgrader that accepts the given origin check.
// A nil check accepts every origin; CORS for the HTTP routes is enforced
// separately.
func Upgrader(checkOrigin func(r *http.Request) bool) *websocket.Upgrader {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
}

// Serve upgrades the request and pumps messages for tripID until the peer
// goes away. initial, when non-nil, is the first message written. Serve
// blocks for the lifetime of the connection.
//
// Go Learning Note — One Writer per Connection:
// gorilla/websocket allows one concurrent reader and one concurrent writer.
// All writes, pings included, therefore go through writePump; the handler
// side only ever pushes into client.Send.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader, tripID string, initial []byte, onMessage MessageHandler) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := h.Register(tripID)
	if initial != nil {
		client.Send <- initial
	}

	ctx, cancel := context.WithCancel(context.Background())
	go h.writePump(conn, client)
	h.readPump(ctx, conn, client, onMessage)

	cancel()
	h.Unregister(client)
	return nil
}

func (h *Hub) readPump(ctx context.Context, conn *websocket.Conn, client *Client, onMessage MessageHandler) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed", zap.String("trip_id", client.TripID), zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage || onMessage == nil {
			continue
		}
		onMessage(ctx, client, data)
	}
}

func (h *Hub) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
