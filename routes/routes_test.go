package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"koshoku_server/routes"
	"koshoku_server/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// testServer wires every API route against an in-memory store.
type testServer struct {
	router *mux.Router
	store  services.Store
	pool   *services.PoolService
	rooms  *services.RoomService
}

func newTestServer() *testServer {
	store := services.NewMemoryStore()
	matchmaker := services.NewMatchmakerService(store, nil)
	poolService := &services.PoolService{Store: store, Matchmaker: matchmaker}
	roomService := &services.RoomService{
		Store:  store,
		Tokens: services.NewTokenService("test-secret", time.Minute),
	}
	profileService := &services.ProfileService{Store: store}

	router := mux.NewRouter()
	routes.RegisterPoolRoutes(router, poolService)
	routes.RegisterMatchRoutes(router, poolService)
	routes.RegisterRoomRoutes(router, roomService)
	routes.RegisterProfileRoutes(router, profileService)

	return &testServer{router: router, store: store, pool: poolService, rooms: roomService}
}

// do issues a request as userID (empty for anonymous) and returns the
// recorded response.
func (ts *testServer) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
