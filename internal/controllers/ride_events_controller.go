package controllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"ride_pool/internal/middleware"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

const (
	EventRequestCreated  = "request_created"
	EventRequestResolved = "request_resolved"
)

// RequestEvent is pushed to a connected driver when a join request on one of
// their rides is opened or resolved.
type RequestEvent struct {
	Type          string    `json:"type"`
	DriverID      uint      `json:"-"` // routing key, not part of the payload
	RideID        uint      `json:"ride_id"`
	PassengerID   uint      `json:"passenger_id"`
	PassengerName string    `json:"passenger_name,omitempty"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// eventClient pairs a driver connection with its send queue. All writes to
// the connection go through writePump, one goroutine per connection, because
// gorilla/websocket forbids concurrent writers.
type eventClient struct {
	driverID uint
	conn     *websocket.Conn
	send     chan RequestEvent
}

func (c *eventClient) writePump(h *EventHub) {
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logrus.WithField("driver_id", c.driverID).
					Info("Client connection closed during broadcast, unregistering.")
			} else {
				logrus.WithError(err).WithField("driver_id", c.driverID).
					Warn("Failed to send request event to client.")
			}
			h.UnregisterClient(c)
			return
		}
	}
}

// EventHub manages active WebSocket connections per driver and fans request
// events out to them.
type EventHub struct {
	driverClients map[uint]map[*eventClient]bool
	broadcast     chan RequestEvent
	mu            sync.Mutex
}

// NewEventHub creates a hub and starts its broadcasting goroutine.
func NewEventHub() *EventHub {
	hub := &EventHub{
		driverClients: make(map[uint]map[*eventClient]bool),
		broadcast:     make(chan RequestEvent, 100),
	}
	go hub.run()
	return hub
}

func (h *EventHub) run() {
	for ev := range h.broadcast {
		h.mu.Lock()
		for client := range h.driverClients[ev.DriverID] {
			select {
			case client.send <- ev:
			default:
				logrus.WithField("driver_id", ev.DriverID).
					Warn("Client send queue full, dropping event.")
			}
		}
		h.mu.Unlock()
	}
}

// RegisterClient registers a driver's connection with the hub and starts its
// write pump.
func (h *EventHub) RegisterClient(driverID uint, conn *websocket.Conn) *eventClient {
	client := &eventClient{
		driverID: driverID,
		conn:     conn,
		send:     make(chan RequestEvent, 16),
	}
	h.mu.Lock()
	if _, ok := h.driverClients[driverID]; !ok {
		h.driverClients[driverID] = make(map[*eventClient]bool)
	}
	h.driverClients[driverID][client] = true
	h.mu.Unlock()

	go client.writePump(h)
	logrus.WithField("driver_id", driverID).Info("Client registered with EventHub.")
	return client
}

// UnregisterClient removes a driver connection from the hub and stops its
// write pump. Safe to call more than once for the same client.
func (h *EventHub) UnregisterClient(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.driverClients[c.driverID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.driverClients, c.driverID)
	}
	logrus.WithField("driver_id", c.driverID).Info("Client unregistered from EventHub.")
}

// Publish queues an event for broadcast; drops it if the channel is full.
func (h *EventHub) Publish(ev RequestEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- ev:
	default:
		logrus.Warn("Request event channel full, dropping event.")
	}
}

// RequestHub is the shared hub for join-request events.
var RequestHub = NewEventHub()

// HandleRequestFeed upgrades the connection and streams join-request events
// for rides the authenticated user drives. The token rides in a query
// parameter because browsers can't set headers on WebSocket upgrades.
func HandleRequestFeed(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
		return
	}
	userID, err := middleware.UserIDFromToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed.")
		return
	}

	client := RequestHub.RegisterClient(userID, conn)
	defer func() {
		RequestHub.UnregisterClient(client)
		conn.Close()
	}()

	// Drain the connection; clients only listen, but reading surfaces
	// close frames and ping/pong traffic.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
