package routes_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"koshoku_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterProfileValidatesNickname(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/profile", "userA", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid-argument", decodeError(t, rec).Error.Code)
}

func TestRegisterAndFetchProfile(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/profile", "userA", map[string]string{"nickname": "ponzu"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/profile", "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.UserProfile
	require.NoError(t, json.Unmarshal(decodeJSON(t, rec)["profile"], &profile))
	assert.Equal(t, "userA", profile.UserID)
	assert.Equal(t, "ponzu", profile.Nickname)
	assert.Equal(t, 0, profile.MiracleMatchPoints)
}

func TestFetchMissingProfile(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/profile", "userA", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not-found", decodeError(t, rec).Error.Code)
}
