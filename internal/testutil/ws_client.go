package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/evanm/mindlog/internal/events"
	ws "github.com/gorilla/websocket"
)

// WSClient wraps a websocket connection to the event feed for tests.
type WSClient struct {
	t    *testing.T
	conn *ws.Conn
}

// NewWSClient dials the event feed with the given access token and
// fails the test if the handshake is rejected.
func NewWSClient(t *testing.T, ts *TestServer, token string) *WSClient {
	t.Helper()

	conn, _, err := ws.DefaultDialer.Dial(ts.WebSocketURL(token), nil)
	if err != nil {
		t.Fatalf("failed to dial event feed: %v", err)
	}

	client := &WSClient{t: t, conn: conn}
	t.Cleanup(client.Close)
	return client
}

func (c *WSClient) Close() {
	c.conn.Close()
}

// ExpectEvent waits for the next event on the feed and fails the test
// if none arrives within the timeout.
func (c *WSClient) ExpectEvent(timeout time.Duration) events.Event {
	c.t.Helper()

	c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("expected an event on the feed: %v", err)
	}

	var event events.Event
	if err := json.Unmarshal(data, &event); err != nil {
		c.t.Fatalf("failed to decode event %q: %v", string(data), err)
	}
	return event
}

// ExpectSilence asserts that nothing arrives on the feed within the
// given window.
func (c *WSClient) ExpectSilence(window time.Duration) {
	c.t.Helper()

	c.conn.SetReadDeadline(time.Now().Add(window))
	if _, data, err := c.conn.ReadMessage(); err == nil {
		c.t.Fatalf("expected no events, got %q", string(data))
	}
}
