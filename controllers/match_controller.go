package controllers

import (
	"net/http"

	"koshoku_server/services"

	"github.com/gorilla/mux"
)

// MatchController handles HTTP requests for committed matches
type MatchController struct {
	PoolService *services.PoolService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(poolService *services.PoolService) *MatchController {
	return &MatchController{PoolService: poolService}
}

// GetMatch returns one match record by id
func (mc *MatchController) GetMatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}

	matchID := mux.Vars(r)["matchId"]
	if matchID == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "matchId is required")
		return
	}

	match, err := mc.PoolService.GetMatch(r.Context(), matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"match": match,
	})
}
