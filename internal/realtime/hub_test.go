package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/campushub/portal-api/pkg/config"
)

func newTestHub() *Hub {
	return NewHub(config.RealtimeConfig{
		Enabled:        true,
		Channel:        "portal:events",
		WriteTimeout:   time.Second,
		PingInterval:   time.Minute,
		SendBufferSize: 8,
	}, nil, nil)
}

// hubServer upgrades every request and registers the connection for the
// given user, mirroring what the realtime handler does.
func hubServer(t *testing.T, hub *Hub, userID string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Acquire(userID, r.URL.Query().Get("token"), conn)
	}))
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitConnected(t *testing.T, hub *Hub, userID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Connected(userID) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %s never connected", userID)
}

func TestHubDeliversEventToRecipient(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	server := hubServer(t, hub, "user-1")
	defer server.Close()

	conn := dial(t, server, "tok-1")
	defer conn.Close()
	waitConnected(t, hub, "user-1")

	hub.Publish(context.Background(), Event{
		Type:       EventMessageCreated,
		Payload:    map[string]string{"body": "hello"},
		Recipients: []string{"user-1"},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, EventMessageCreated, event.Type)
	assert.False(t, event.SentAt.IsZero())
}

func TestHubSkipsOtherRecipients(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	server := hubServer(t, hub, "user-1")
	defer server.Close()

	conn := dial(t, server, "tok-1")
	defer conn.Close()
	waitConnected(t, hub, "user-1")

	hub.Publish(context.Background(), Event{
		Type:       EventMessageCreated,
		Recipients: []string{"someone-else"},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHubReacquireReplacesExistingClient(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	server := hubServer(t, hub, "user-1")
	defer server.Close()

	first := dial(t, server, "tok-1")
	defer first.Close()
	waitConnected(t, hub, "user-1")

	second := dial(t, server, "tok-2")
	defer second.Close()

	// The replaced connection is torn down and reads on it fail.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)

	assert.True(t, hub.Connected("user-1"))
}

func TestHubReacquireDistinguishesTokenRotation(t *testing.T) {
	const rotatedMsg = "realtime token rotated, recreating client"

	core, logs := observer.New(zap.DebugLevel)
	hub := NewHub(config.RealtimeConfig{
		Enabled:        true,
		Channel:        "portal:events",
		WriteTimeout:   time.Second,
		PingInterval:   time.Minute,
		SendBufferSize: 8,
	}, nil, zap.New(core))
	defer hub.Close()
	server := hubServer(t, hub, "user-1")
	defer server.Close()

	first := dial(t, server, "tok-1")
	defer first.Close()
	waitConnected(t, hub, "user-1")

	// Same token: a plain reconnect, no rotation is reported.
	second := dial(t, server, "tok-1")
	defer second.Close()
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, logs.FilterMessage(rotatedMsg).Len())

	// Fresh token: the replacement is a credential rotation.
	third := dial(t, server, "tok-2")
	defer third.Close()
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = second.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage(rotatedMsg).Len())

	assert.True(t, hub.Connected("user-1"))
}

func TestHubReleaseUserDisconnects(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	server := hubServer(t, hub, "user-1")
	defer server.Close()

	conn := dial(t, server, "tok-1")
	defer conn.Close()
	waitConnected(t, hub, "user-1")

	hub.ReleaseUser("user-1")
	assert.False(t, hub.Connected("user-1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHubCloseRefusesNewClients(t *testing.T) {
	hub := newTestHub()
	server := hubServer(t, hub, "user-1")
	defer server.Close()

	hub.Close()

	conn := dial(t, server, "tok-1")
	defer conn.Close()

	// The server side closes the refused connection immediately.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.False(t, hub.Connected("user-1"))
}
