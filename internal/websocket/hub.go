package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/evanm/mindlog/internal/events"
)

// Hub relays bus events to connected clients. Each client only
// receives events scoped to its own user.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	bus        *events.Bus
	mu         sync.RWMutex
}

func NewHub(bus *events.Bus) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		bus:        bus,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	feed, cancel := h.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case event, ok := <-feed:
			if !ok {
				return
			}
			h.dispatch(event)
		}
	}
}

// Stop gracefully shuts down the hub and waits for Run() to exit.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) dispatch(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.userID != event.UserID {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Client buffer full; skip rather than stall dispatch.
		}
	}
}
