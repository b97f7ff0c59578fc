package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"koshoku_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRequiresIdentity(t *testing.T) {
	ts := newTestServer()

	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		rec := ts.do(t, method, "/api/pool", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthenticated", decodeError(t, rec).Error.Code)
	}
}

func TestEnterPoolValidatesCategory(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/pool", "userA", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid-argument", decodeError(t, rec).Error.Code)
}

func TestEnterAndPollPool(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/pool", "userA", map[string]string{"category": "ramen"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/pool", "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entry models.WaitingEntry
	require.NoError(t, json.Unmarshal(decodeJSON(t, rec)["entry"], &entry))
	assert.Equal(t, "userA", entry.UserID)
	assert.Equal(t, models.StatusWaiting, entry.Status)
	assert.Equal(t, "ramen", entry.Category)
}

func TestPoolStatusWithoutEntry(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/pool", "userA", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not-found", decodeError(t, rec).Error.Code)
}

func TestCancelWaiting(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/pool", "userA", map[string]string{"category": "ramen"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/pool", "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Cancelled bool `json:"cancelled"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Cancelled)

	rec = ts.do(t, http.MethodGet, "/api/pool", "userA", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchLookup(t *testing.T) {
	ts := newTestServer()

	// Pair two users through the matchmaker, then fetch the match record.
	rec := ts.do(t, http.MethodPost, "/api/pool", "userB", map[string]string{"category": "ramen"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/pool", "userA", map[string]string{"category": "ramen"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, ts.pool.Matchmaker.HandleEntryCreated(context.Background(), "userA"))

	rec = ts.do(t, http.MethodGet, "/api/pool", "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entry models.WaitingEntry
	require.NoError(t, json.Unmarshal(decodeJSON(t, rec)["entry"], &entry))
	require.Equal(t, models.StatusMatched, entry.Status)

	rec = ts.do(t, http.MethodGet, "/api/match/"+entry.MatchID, "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var match models.Match
	require.NoError(t, json.Unmarshal(decodeJSON(t, rec)["match"], &match))
	assert.True(t, match.IsMiracleMatch)
	assert.ElementsMatch(t, []string{"userA", "userB"}, match.Participants)

	rec = ts.do(t, http.MethodGet, "/api/match/no-such-match", "userA", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
