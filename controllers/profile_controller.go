package controllers

import (
	"encoding/json"
	"net/http"

	"koshoku_server/services"
)

// ProfileController handles HTTP requests for user profiles
type ProfileController struct {
	ProfileService *services.ProfileService
}

// NewProfileController creates a new ProfileController instance
func NewProfileController(profileService *services.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

type registerProfileRequest struct {
	Nickname string `json:"nickname"`
}

// Register upserts the caller's nickname
func (pc *ProfileController) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req registerProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}
	if req.Nickname == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "nickname is required")
		return
	}

	profile, err := pc.ProfileService.Register(r.Context(), userID, req.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}

// Get returns the caller's profile, miracle match points included
func (pc *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	profile, err := pc.ProfileService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}
