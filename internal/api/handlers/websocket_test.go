package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/evanm/mindlog/internal/events"
	"github.com/evanm/mindlog/internal/testutil"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketHandler_RejectsBadToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, resp, err := ws.DefaultDialer.Dial(ts.WebSocketURL(""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = ws.DefaultDialer.Dial(ts.WebSocketURL("not-a-jwt"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketHandler_StreamsOwnEvents(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	feed := testutil.NewWSClient(t, ts, token)
	otherFeed := testutil.NewWSClient(t, ts, otherToken)

	// Give the hub a moment to register both clients.
	time.Sleep(100 * time.Millisecond)

	resp := postEntry(t, ts, token, "An entry worth broadcasting.")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	event := feed.ExpectEvent(2 * time.Second)
	assert.Equal(t, events.TypeEntryCreated, event.Type)
	assert.Equal(t, user.ID, event.UserID)

	// The other user's feed stays silent.
	otherFeed.ExpectSilence(300 * time.Millisecond)
}
