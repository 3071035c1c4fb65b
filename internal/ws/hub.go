package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"HomeDesk/bot/chat"
	"HomeDesk/entity"
)

// Event represents a WebSocket event sent to dashboard clients.
type Event struct {
	Type string      `json:"type"` // "intake_committed", "pass_checkin"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active dashboard connections and broadcasts
// intake and check-in events to the front-desk dashboard.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			// Write lock: a client that cannot keep up is evicted
			// mid-iteration.
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// WorkflowCommitted implements chat.CommitListener: every committed
// intake is pushed to the dashboard.
func (h *Hub) WorkflowCommitted(workflowID chat.WorkflowID, senderID string, entityData any) {
	h.broadcast <- &Event{
		Type: "intake_committed",
		Data: map[string]any{
			"workflow":  string(workflowID),
			"sender_id": senderID,
			"entity":    entityData,
		},
	}
}

// BroadcastCheckIn sends a pass_checkin event to all dashboard clients.
func (h *Hub) BroadcastCheckIn(pass *entity.VisitorPass) {
	h.broadcast <- &Event{
		Type: "pass_checkin",
		Data: pass,
	}
}
