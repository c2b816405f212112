package ws

import (
	"context"
	"strings"
	"sync"

	"learning-buddy/internal/metrics"

	"github.com/rs/zerolog"
)

type message struct {
	email string
	data  []byte
}

// Hub fans messages out to the clients subscribed to an email address.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Run owns client membership until ctx is cancelled. It must be called at
// most once; after it returns, Register and Unregister no longer block.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			h.drainRegistrations()
			metrics.WebSocketClients.Set(0)
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			metrics.WebSocketClients.Set(float64(total))
			h.logger.Debug().Str("client_id", client.id).Str("email", client.email).Int("total_clients", total).Msg("ws connected")

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			metrics.WebSocketClients.Set(float64(total))
			h.logger.Debug().Str("client_id", client.id).Int("total_clients", total).Msg("ws disconnected")

		case msg := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				if c.email == msg.email {
					targets = append(targets, c)
				}
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.data:
				default:
					h.drop(client)
				}
			}
			h.logger.Debug().Str("email", msg.email).Int("clients", len(targets)).Msg("ws publish")
		}
	}
}

// drop removes a slow client inline; Run must not block on its own
// unregister channel.
func (h *Hub) drop(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// drainRegistrations closes clients that were queued but never admitted.
func (h *Hub) drainRegistrations() {
	for {
		select {
		case client := <-h.register:
			if client != nil {
				close(client.send)
			}
		default:
			return
		}
	}
}

// Register admits client. On a stopped hub the client's send queue is closed
// at once so its writer exits.
func (h *Hub) Register(client *Client) {
	if h == nil || client == nil {
		return
	}
	select {
	case <-h.done:
		close(client.send)
		return
	default:
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister is a no-op once the hub has stopped; Run already closed every
// admitted client.
func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues data for every client of email. A full queue drops the
// message.
func (h *Hub) Publish(email string, data []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- message{email: normalizeEmail(email), data: data}:
	default:
		h.logger.Warn().Str("reason", "buffer_full").Msg("ws publish dropped")
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
