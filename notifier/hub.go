package notifier

import (
	"encoding/json"
	"log"
	"sync"

	"cropshare/models"

	"github.com/gorilla/websocket"
)

// Client is one live connection for one user. A user may hold several
// (multiple tabs); pushes fan out to all of them.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

type push struct {
	UserID string
	Data   []byte
}

// Hub maps user identities to their live connections and delivers
// receive_message events. It is the only shared in-process mutable state;
// all mutation is serialized through the run loop.
type Hub struct {
	groups     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan push
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan push, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.groups[c.UserID] == nil {
				h.groups[c.UserID] = make(map[*Client]bool)
			}
			h.groups[c.UserID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.groups[c.UserID]; conns != nil && conns[c] {
				delete(conns, c)
				close(c.Send)
				if len(conns) == 0 {
					delete(h.groups, c.UserID)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.groups[m.UserID] {
				select {
				case c.Send <- m.Data:
				default:
					// slow consumer, drop the connection
					close(c.Send)
					delete(h.groups[m.UserID], c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.groups {
				for c := range conns {
					close(c.Send)
				}
			}
			h.groups = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the run loop down and closes every client send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// enroll hands a new connection to the run loop. Reports false when the hub
// has already stopped, so a connection upgraded during shutdown does not
// block its handler goroutine.
func (h *Hub) enroll(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// withdraw removes a connection. Safe to call after Stop; the done case
// covers clients that disconnect while the run loop is gone.
func (h *Hub) withdraw(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Envelope is the wire shape of a push event.
type Envelope struct {
	Event   string         `json:"event"`
	Message models.Message `json:"message"`
}

// Publish delivers a receive_message event to every connection the receiver
// currently holds. A receiver with no connections is steady state, not an
// error: the persisted record is the source of truth and the push is
// silently dropped.
func (h *Hub) Publish(receiverID string, msg models.Message) {
	data, err := json.Marshal(Envelope{Event: "receive_message", Message: msg})
	if err != nil {
		log.Printf("notifier: marshal push: %v", err)
		return
	}
	select {
	case h.broadcast <- push{UserID: receiverID, Data: data}:
	case <-h.done:
	}
}
