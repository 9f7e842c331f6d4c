// Package realtime streams conversation change events to connected clients
// over server-sent events.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/livix/roommates/internal/logger"
)

type Event string

const (
	EventConversationsChanged Event = "ConversationsChanged"
)

const (
	outboundBuffer    = 16
	heartbeatInterval = 15 * time.Second
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// ConversationsChannel is the channel carrying profileID's conversation changes.
func ConversationsChannel(profileID string) string {
	return "conversations:" + profileID
}

type Client struct {
	ID        uuid.UUID
	ProfileID string
	Channels  map[string]bool
	Outbound  chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// Hub fans messages out to the clients subscribed to their channel. A client
// whose buffer is full misses the message.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
	heartbeat     time.Duration
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "RealtimeHub"),
		subscriptions: make(map[string]map[*Client]bool),
		heartbeat:     heartbeatInterval,
	}
}

func (h *Hub) NewClient(profileID string) *Client {
	return &Client{
		ID:        uuid.New(),
		ProfileID: profileID,
		Channels:  make(map[string]bool),
		Outbound:  make(chan Message, outboundBuffer),
		done:      make(chan struct{}),
	}
}

func (h *Hub) AddChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	client.Channels[channel] = true

	clients, ok := h.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		h.subscriptions[channel] = clients
	}
	clients[client] = true

	h.log.Debug("Realtime client subscribed", "clientID", client.ID, "channel", channel)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range client.Channels {
		if clients, ok := h.subscriptions[ch]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
}

// Subscribers reports how many clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[channel])
}

func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.Channel == "" {
		return
	}
	for c := range h.subscriptions[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("Dropping realtime message; outbound buffer full", "clientID", c.ID)
		}
	}
}

// ServeHTTP streams client's messages until the request context ends or the
// client is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Debug("Realtime client disconnected", "clientID", client.ID)
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			raw, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("Failed to marshal realtime message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}

// CloseClient unsubscribes client and stops its stream. Safe to call twice.
func (h *Hub) CloseClient(client *Client) {
	client.closeOnce.Do(func() {
		close(client.done)
		h.RemoveClient(client)
	})
}
