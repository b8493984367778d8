package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	s := httptest.NewServer(hub)
	defer s.Close()

	u := "ws" + strings.TrimPrefix(s.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, time.Millisecond)

	hub.Send([]byte(`{"device":0,"model":"contact"}`))

	var got Sample
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "contact", got.Model)
}

func TestHub_DisconnectAndClose(t *testing.T) {
	hub := NewHub(nil)
	s := httptest.NewServer(hub)
	defer s.Close()

	u := "ws" + strings.TrimPrefix(s.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, time.Millisecond)

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())
	hub.Send([]byte(`{}`))
}
