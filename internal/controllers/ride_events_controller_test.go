package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride_pool/internal/middleware"
)

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/requests", HandleRequestFeed)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialFeed(t *testing.T, srv *httptest.Server, driverID uint) *websocket.Conn {
	t.Helper()
	token, err := middleware.GenerateToken(driverID, "user")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/requests?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	// Registration happens in the handler goroutine after the upgrade
	// handshake returns; wait for the hub to see the client.
	require.Eventually(t, func() bool {
		RequestHub.mu.Lock()
		defer RequestHub.mu.Unlock()
		return len(RequestHub.driverClients[driverID]) == 1
	}, time.Second, 5*time.Millisecond)

	return conn
}

// A burst of events queued for one driver must all arrive on the single
// connection; writes are funneled through one pump per connection rather than
// racing on the socket.
func TestRequestFeed_DeliversQueuedEventBurst(t *testing.T) {
	srv := feedServer(t)
	conn := dialFeed(t, srv, 1)

	for i := 1; i <= 5; i++ {
		RequestHub.Publish(RequestEvent{
			Type:        EventRequestCreated,
			DriverID:    1,
			RideID:      uint(i),
			PassengerID: 2,
			Status:      "pending",
		})
	}
	// An event for another driver must not leak onto this connection.
	RequestHub.Publish(RequestEvent{Type: EventRequestCreated, DriverID: 99, RideID: 42})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	got := make(map[uint]bool)
	for i := 0; i < 5; i++ {
		var ev RequestEvent
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, EventRequestCreated, ev.Type)
		assert.NotEqual(t, uint(42), ev.RideID)
		got[ev.RideID] = true
	}
	assert.Len(t, got, 5, "each queued event arrives exactly once")
}

func TestRequestFeed_RejectsMissingToken(t *testing.T) {
	srv := feedServer(t)

	resp, err := http.Get(srv.URL + "/ws/requests")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
