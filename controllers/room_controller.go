package controllers

import (
	"encoding/json"
	"net/http"

	"koshoku_server/services"

	"github.com/gorilla/mux"
)

// RoomController handles HTTP requests for the room lifecycle
type RoomController struct {
	RoomService *services.RoomService
}

// NewRoomController creates a new RoomController instance
func NewRoomController(roomService *services.RoomService) *RoomController {
	return &RoomController{RoomService: roomService}
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Bgm      string `json:"bgm,omitempty"`
}

// CreateRoom opens a new room with the caller as its first participant
func (rc *RoomController) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}
	if req.Name == "" || req.Category == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "name and category are required")
		return
	}

	room, err := rc.RoomService.CreateRoom(r.Context(), userID, req.Name, req.Category, req.Bgm)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"roomId": room.RoomID,
		"room":   room,
	})
}

// GetRoom returns one room record by id
func (rc *RoomController) GetRoom(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}

	roomID := mux.Vars(r)["roomId"]
	if roomID == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "roomId is required")
		return
	}

	room, err := rc.RoomService.GetRoom(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room": room,
	})
}

// JoinRoom takes a seat in the room and returns a realtime access token
func (rc *RoomController) JoinRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	roomID := mux.Vars(r)["roomId"]
	if roomID == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "roomId is required")
		return
	}

	room, token, err := rc.RoomService.JoinRoom(r.Context(), userID, roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": token,
		"room":        room,
	})
}

// LeaveRoom gives up the caller's seat; the room disappears when it empties
func (rc *RoomController) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	roomID := mux.Vars(r)["roomId"]
	if roomID == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidArgument, "roomId is required")
		return
	}

	deleted, err := rc.RoomService.LeaveRoom(r.Context(), userID, roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}
