package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg := <-c.Send:
		return string(msg)
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for message on %s", c.TripID)
		return ""
	}
}

func TestHubBroadcastLocal(t *testing.T) {
	hub, err := NewHub(context.Background(), nil, nil)
	require.NoError(t, err)
	defer hub.Close()

	a := hub.Register("trip-1")
	b := hub.Register("trip-1")
	other := hub.Register("trip-2")
	defer hub.Unregister(a)
	defer hub.Unregister(b)
	defer hub.Unregister(other)

	hub.Broadcast("trip-1", []byte("hello"))

	assert.Equal(t, "hello", receive(t, a))
	assert.Equal(t, "hello", receive(t, b))
	assert.Empty(t, other.Send)
	assert.Equal(t, 2, hub.Subscribers("trip-1"))
}

func TestHubUnregisterClosesOnce(t *testing.T) {
	hub, err := NewHub(context.Background(), nil, nil)
	require.NoError(t, err)

	c := hub.Register("trip-3")
	hub.Unregister(c)
	hub.Unregister(c)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Zero(t, hub.Subscribers("trip-3"))
}

func TestHubSlowClientDoesNotBlock(t *testing.T) {
	hub, err := NewHub(context.Background(), nil, nil)
	require.NoError(t, err)

	c := hub.Register("trip-4")
	defer hub.Unregister(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.Broadcast("trip-4", []byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client")
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestChannelHelpers(t *testing.T) {
	ch := redisChannel("abc")
	assert.Equal(t, "trip:abc:state", ch)
	assert.Equal(t, "abc", tripIDFromChannel(ch))
	assert.Empty(t, tripIDFromChannel("bad"))
	assert.Empty(t, tripIDFromChannel("trip::state"))
	assert.Empty(t, tripIDFromChannel("tracking:abc:broadcast"))
}

func TestHubRedisRelay(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	hub, err := NewHub(context.Background(), rdb, nil)
	require.NoError(t, err)
	defer hub.Close()

	c := hub.Register("trip-redis")
	defer hub.Unregister(c)

	hub.Broadcast("trip-redis", []byte("ping"))
	assert.Equal(t, "ping", receive(t, c))

	// Published by another instance.
	require.NoError(t, rdb.Publish(context.Background(), "trip:trip-redis:state", "pong").Err())
	assert.Equal(t, "pong", receive(t, c))

	// Exactly once per broadcast.
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected duplicate %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRedisPublishFailureFallsBackToLocal(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer rdb.Close()

	hub, err := NewHub(context.Background(), rdb, nil)
	require.NoError(t, err)

	c := hub.Register("trip-down")
	defer hub.Unregister(c)

	s.Close()
	hub.Broadcast("trip-down", []byte("still here"))
	assert.Equal(t, "still here", receive(t, c))
}

func TestNewHubRedisUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewHub(ctx, rdb, nil)
	assert.Error(t, err)
}

func TestServeWebsocket(t *testing.T) {
	hub, err := NewHub(context.Background(), nil, nil)
	require.NoError(t, err)

	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, Upgrader(nil), "trip-ws", []byte(`{"type":"state"}`), func(ctx context.Context, c *Client, data []byte) {
			received <- string(data)
			c.Send <- []byte("echo:" + string(data))
		})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"state"}`, string(msg))

	hub.Broadcast("trip-ws", []byte("update"))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "update", string(msg))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hi")))
	assert.Equal(t, "hi", <-received)
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", string(msg))
}

func TestServeRejectsPlainHTTP(t *testing.T) {
	hub, err := NewHub(context.Background(), nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/trips/x/ws", nil)
	err = hub.Serve(rec, req, Upgrader(nil), "x", nil, nil)

	assert.Error(t, err)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Zero(t, hub.Subscribers("x"))
}
