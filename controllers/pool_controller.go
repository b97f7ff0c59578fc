package controllers

import (
	"encoding/json"
	"net/http"

	"koshoku_server/services"
)

// PoolController handles HTTP requests for the waiting pool
type PoolController struct {
	PoolService *services.PoolService
}

// NewPoolController creates a new PoolController instance
func NewPoolController(poolService *services.PoolService) *PoolController {
	return &PoolController{PoolService: poolService}
}

type enterPoolRequest struct {
	Category string `json:"category"`
}

// EnterPool puts the caller into the waiting pool and kicks off matchmaking
func (pc *PoolController) EnterPool(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req enterPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}
	if req.Category == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "category is required")
		return
	}

	entry, err := pc.PoolService.Enter(r.Context(), userID, req.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"entry": entry,
	})
}

// GetStatus returns the caller's current waiting entry
func (pc *PoolController) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	entry, err := pc.PoolService.Status(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry": entry,
	})
}

// CancelWaiting removes the caller's entry from the pool
func (pc *PoolController) CancelWaiting(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	cancelled, entry, err := pc.PoolService.Cancel(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := map[string]interface{}{
		"cancelled": cancelled,
	}
	if entry != nil {
		// The matchmaker got there first; hand the client its match instead.
		resp["entry"] = entry
	}
	writeJSON(w, http.StatusOK, resp)
}
