package routes

import (
	"koshoku_server/controllers"
	"koshoku_server/services"

	"github.com/gorilla/mux"
)

// RegisterRoomRoutes sets up routes for the room lifecycle under /api/rooms
func RegisterRoomRoutes(r *mux.Router, roomService *services.RoomService) {
	controller := controllers.NewRoomController(roomService)

	roomRouter := r.PathPrefix("/api/rooms").Subrouter()
	roomRouter.Use(RequireIdentity)

	roomRouter.HandleFunc("", controller.CreateRoom).Methods("POST")
	roomRouter.HandleFunc("/{roomId}", controller.GetRoom).Methods("GET")
	roomRouter.HandleFunc("/{roomId}/join", controller.JoinRoom).Methods("POST")
	roomRouter.HandleFunc("/{roomId}/leave", controller.LeaveRoom).Methods("POST")
}
