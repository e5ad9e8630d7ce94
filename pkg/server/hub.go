package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
)

var upgrader = websocket.Upgrader{
	// Clients are local editor tabs served from other origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

// Message is the JSON frame pushed to websocket clients for every bus event.
type Message struct {
	ID      string      `json:"id"`
	Kind    string      `json:"kind"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func newMessage(e events.Event) Message {
	m := Message{
		ID:      uuid.NewString(),
		Kind:    string(e.Kind()),
		At:      time.Now().UTC(),
		Payload: e,
	}
	if pf, ok := e.(events.PersistenceFailed); ok {
		m.Payload = nil
		m.At = pf.At
		if pf.Err != nil {
			m.Error = pf.Err.Error()
		}
	}
	return m
}

type client struct {
	id   string
	send chan Message
}

// Hub forwards bus events to connected websocket clients. Slow clients drop
// frames instead of blocking the publisher.
type Hub struct {
	logger logrus.FieldLogger
	sub    events.Subscription

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

// NewHub subscribes to every event on bus.
func NewHub(bus *events.Bus, logger logrus.FieldLogger) *Hub {
	h := &Hub{logger: logger, clients: make(map[string]*client)}
	if bus != nil {
		h.sub = bus.Subscribe(h.broadcast)
	}
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(e events.Event) {
	msg := newMessage(e)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.WithField("client", c.id).Warn("websocket client too slow, dropping event")
		}
	}
}

func (h *Hub) register() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &client{id: uuid.NewString(), send: make(chan Message, sendBuffer)}
	h.clients[c.id] = c
	websocketClients.Set(float64(len(h.clients)))
	return c, true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	websocketClients.Set(float64(len(h.clients)))
}

// Close unsubscribes from the bus and disconnects every client.
func (h *Hub) Close() {
	h.sub.Unsubscribe()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
	websocketClients.Set(0)
}

// HandleWebSocket upgrades the request and streams events until either side
// goes away.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer ws.Close()

	cl, ok := h.register()
	if !ok {
		return
	}
	log := h.logger.WithField("client", cl.id)
	log.Debug("websocket client connected")

	// Reads only detect the peer closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, open := <-cl.send:
			if !open {
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
					time.Now().Add(writeWait))
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("websocket write failed")
				h.unregister(cl)
				return
			}
		case <-gone:
			log.Debug("websocket client disconnected")
			h.unregister(cl)
			return
		}
	}
}
