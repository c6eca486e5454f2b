// Package stream fans trip updates out to WebSocket clients, optionally
// through Redis so that every instance behind a load balancer sees them.
package stream

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridefare/internal/logger"
)

const (
	channelPrefix  = "trip:"
	channelSuffix  = ":state"
	channelPattern = channelPrefix + "*" + channelSuffix

	sendBuffer = 64
)

// Hub tracks the clients subscribed to each trip.
//
// Without Redis, Broadcast delivers straight to local clients. With Redis,
// Broadcast only publishes; every instance, this one included, delivers
// what arrives on its pattern subscription. That way a client never gets
// the same payload twice.
type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	log     *zap.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	done    chan struct{}
}

// Client is one subscriber of a trip. Send is closed by Unregister.
type Client struct {
	TripID string
	Send   chan []byte
}

// NewHub creates a hub. When redisClient is non-nil the hub subscribes to
// every trip channel before returning, so a Broadcast right after NewHub is
// not lost.
func NewHub(ctx context.Context, redisClient *redis.Client, log *zap.Logger) (*Hub, error) {
	h := &Hub{
		redis:   redisClient,
		log:     logger.OrNop(log),
		clients: map[string]map[*Client]struct{}{},
		done:    make(chan struct{}),
	}

	if redisClient == nil {
		close(h.done)
		return h, nil
	}

	h.pubsub = redisClient.PSubscribe(ctx, channelPattern)
	if _, err := h.pubsub.Receive(ctx); err != nil {
		_ = h.pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channelPattern, err)
	}
	go h.relay()
	return h, nil
}

// Register adds a subscriber for tripID.
func (h *Hub) Register(tripID string) *Client {
	client := &Client{
		TripID: tripID,
		Send:   make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tripID] == nil {
		h.clients[tripID] = map[*Client]struct{}{}
	}
	h.clients[tripID][client] = struct{}{}
	return client
}

// Unregister removes the client and closes its Send channel. Calling it
// twice is harmless.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tripClients, ok := h.clients[client.TripID]
	if !ok {
		return
	}
	if _, ok := tripClients[client]; !ok {
		return
	}
	delete(tripClients, client)
	if len(tripClients) == 0 {
		delete(h.clients, client.TripID)
	}
	close(client.Send)
}

// Subscribers returns how many local clients follow tripID.
func (h *Hub) Subscribers(tripID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tripID])
}

// Broadcast sends payload to every subscriber of tripID.
func (h *Hub) Broadcast(tripID string, payload []byte) {
	if h.redis == nil {
		h.deliver(tripID, payload)
		return
	}
	if err := h.redis.Publish(context.Background(), redisChannel(tripID), payload).Err(); err != nil {
		h.log.Warn("redis publish failed, delivering locally", zap.String("trip_id", tripID), zap.Error(err))
		h.deliver(tripID, payload)
	}
}

// deliver never blocks: a client whose buffer is full misses the message
// and catches up with the next snapshot.
func (h *Hub) deliver(tripID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[tripID] {
		select {
		case client.Send <- payload:
		default:
			h.log.Debug("dropped message for slow client", zap.String("trip_id", tripID))
		}
	}
}

func (h *Hub) relay() {
	defer close(h.done)
	for msg := range h.pubsub.Channel() {
		tripID := tripIDFromChannel(msg.Channel)
		if tripID == "" {
			continue
		}
		h.deliver(tripID, []byte(msg.Payload))
	}
}

// Close ends the Redis subscription and waits for the relay to exit.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	err := h.pubsub.Close()
	<-h.done
	return err
}

func redisChannel(tripID string) string {
	return channelPrefix + tripID + channelSuffix
}

func tripIDFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(ch, channelPrefix), channelSuffix)
}
