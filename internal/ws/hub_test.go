package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowd-safety-service/internal/logging"
)

func TestBroadcastReachesDashboard(t *testing.T) {
	hub := NewHub(logging.NewNop())
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Add(conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast("alert_created", map[string]string{"id": "a-1"})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	var event Event
	require.NoError(t, client.ReadJSON(&event))
	assert.Equal(t, "alert_created", event.Kind)
	assert.False(t, event.SentAt.IsZero())
}

func TestRemoveDropsConnection(t *testing.T) {
	hub := NewHub(logging.NewNop())
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Add(conn)
		conns <- conn
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	conn := <-conns
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Remove(conn)
	assert.Equal(t, 0, hub.Count())
}
