package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/evanm/mindlog/internal/api/handlers"
	"github.com/evanm/mindlog/internal/domain"
	"github.com/evanm/mindlog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postEntry(t *testing.T, ts *testutil.TestServer, token, text string) *http.Response {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"entryText": text})
	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/journals"), bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestJournalHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	t.Run("requires authentication", func(t *testing.T) {
		resp := postEntry(t, ts, "", "an unauthenticated entry")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		resp := postEntry(t, ts, token, "   ")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("saves the entry and returns the refreshed list", func(t *testing.T) {
		ts.Classifier.Returns(domain.SentimentPositive, []byte(`{"candidates":[]}`))

		resp := postEntry(t, ts, token, "A genuinely good day.")
		defer resp.Body.Close()

		var result handlers.CreateEntryResponse
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		testutil.AssertJSONResponse(t, resp, &result)

		assert.Equal(t, "A genuinely good day.", result.Entry.EntryText)
		assert.Equal(t, "positive", result.Entry.SentimentTag)
		assert.NotEmpty(t, result.Entry.ID)
		assert.False(t, result.Entry.CreatedAt.IsZero())

		require.NotEmpty(t, result.Entries)
		assert.Equal(t, result.Entry.ID, result.Entries[0].ID)
	})

	t.Run("classifier outage still saves with neutral", func(t *testing.T) {
		ts.Classifier.Fails(assert.AnError)
		defer ts.Classifier.Returns(domain.SentimentNeutral, nil)

		resp := postEntry(t, ts, token, "Saved despite the outage.")
		defer resp.Body.Close()

		var result handlers.CreateEntryResponse
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, "neutral", result.Entry.SentimentTag)
	})
}

func TestJournalHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	stranger, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	base := time.Now().Add(-time.Hour)
	testutil.NewEntryBuilder(user.ID).WithText("older").WithCreatedAt(base).Build(t, ts.DB.DB)
	testutil.NewEntryBuilder(user.ID).WithText("newer").WithCreatedAt(base.Add(time.Minute)).Build(t, ts.DB.DB)
	testutil.NewEntryBuilder(stranger.ID).WithText("someone else's").Build(t, ts.DB.DB)

	t.Run("requires authentication", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/journals"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("returns own entries newest first", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts.APIURL("/journals"), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var result handlers.ListEntriesResponse
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertJSONResponse(t, resp, &result)

		require.Len(t, result.Entries, 2)
		assert.Equal(t, "newer", result.Entries[0].EntryText)
		assert.Equal(t, "older", result.Entries[1].EntryText)
	})
}
