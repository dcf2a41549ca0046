package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wink/auth"
	"wink/logger"
	"wink/notify"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newServer(t *testing.T, tokens *auth.Issuer) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(NewHandler(hub, tokens, nil, nil))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	expect(t, conn, EventConnected)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(received{Event: event, Data: raw}))
}

func expect(t *testing.T, conn *websocket.Conn, event string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f received
	require.NoError(t, conn.ReadJSON(&f))
	require.Equal(t, event, f.Event, string(f.Data))
	return f
}

func join(t *testing.T, conn *websocket.Conn, userID string) {
	t.Helper()
	send(t, conn, EventJoinRoom, userID)
	expect(t, conn, EventJoined)
}

func TestPublishReachesEveryJoinedConnection(t *testing.T) {
	hub, srv := newServer(t, nil)
	a1 := dial(t, srv, "")
	a2 := dial(t, srv, "")
	b := dial(t, srv, "")
	join(t, a1, "alice")
	join(t, a2, "alice")
	join(t, b, "bob")

	n := hub.Publish("alice", notify.Match("bob-id", "Bob"))
	assert.Equal(t, 2, n)

	for _, conn := range []*websocket.Conn{a1, a2} {
		f := expect(t, conn, notify.EventNotification)
		var data notify.Notification
		require.NoError(t, json.Unmarshal(f.Data, &data))
		assert.Equal(t, notify.KindMatch, data.Type)
		assert.Equal(t, "bob-id", data.FromID)
	}

	// bob only sees his own pong
	send(t, b, EventPing, nil)
	expect(t, b, EventPong)
}

func TestPublishWithoutListenersIsNoop(t *testing.T) {
	hub := NewHub(nil, nil)
	assert.Equal(t, 0, hub.Publish("nobody", notify.Match("x", "X")))
}

func TestSendMessageRelaysToReceiver(t *testing.T) {
	_, srv := newServer(t, nil)
	alice := dial(t, srv, "")
	bob := dial(t, srv, "")
	join(t, alice, "alice")
	join(t, bob, "bob")

	send(t, alice, EventSendMessage, ChatMessage{Sender: "alice", Receiver: "bob", Text: " hi bob ", SenderName: "Alice"})

	f := expect(t, bob, notify.EventReceiveMessage)
	var msg ChatMessage
	require.NoError(t, json.Unmarshal(f.Data, &msg))
	assert.Equal(t, "hi bob", msg.Text)
	assert.Equal(t, "alice", msg.Sender)

	f = expect(t, bob, notify.EventNotification)
	var n notify.Notification
	require.NoError(t, json.Unmarshal(f.Data, &n))
	assert.Equal(t, notify.KindMessage, n.Type)
	assert.Equal(t, "Alice", n.From)
	assert.Equal(t, "alice", n.Sender)
	assert.Equal(t, "hi bob", n.Text)
}

func TestTokenBindsConnection(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	hub, srv := newServer(t, issuer)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)
	conn := dial(t, srv, "?token="+token)

	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 10*time.Millisecond)

	send(t, conn, EventJoinRoom, "mallory")
	expect(t, conn, EventError)
	assert.Equal(t, 0, hub.Connections("mallory"))

	send(t, conn, EventSendMessage, ChatMessage{Sender: "mallory", Receiver: "bob", Text: "hi"})
	expect(t, conn, EventError)
}

func TestInvalidTokenRejected(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	_, srv := newServer(t, issuer)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLeaveOnDisconnect(t *testing.T) {
	hub, srv := newServer(t, nil)
	conn := dial(t, srv, "")
	join(t, conn, "alice")
	require.Equal(t, 1, hub.Connections("alice"))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections("alice") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFullQueueDropsFrame(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: &buf})
	hub := NewHub(nil, log)
	ctx := log.WithField(context.Background(), "conn_id", "conn-1")
	c := &Client{hub: hub, send: make(chan []byte, 1), ctx: ctx, log: log, rooms: map[string]struct{}{}}
	hub.register(c)
	hub.Join("alice", c)

	assert.Equal(t, 1, hub.Publish("alice", notify.Match("b", "B")))
	assert.Equal(t, 0, hub.Publish("alice", notify.Match("b", "B")))
	assert.Contains(t, buf.String(), `"conn_id":"conn-1"`)
	assert.Contains(t, buf.String(), `"room":"alice"`)

	hub.Leave(c)
	assert.Equal(t, 0, hub.Connections("alice"))
	assert.Equal(t, 0, hub.Publish("alice", notify.Match("b", "B")))
}
