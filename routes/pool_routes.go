package routes

import (
	"koshoku_server/controllers"
	"koshoku_server/services"

	"github.com/gorilla/mux"
)

// RegisterPoolRoutes sets up routes for the waiting pool under /api/pool
func RegisterPoolRoutes(r *mux.Router, poolService *services.PoolService) {
	controller := controllers.NewPoolController(poolService)

	poolRouter := r.PathPrefix("/api/pool").Subrouter()
	poolRouter.Use(RequireIdentity)

	poolRouter.HandleFunc("", controller.EnterPool).Methods("POST")
	poolRouter.HandleFunc("", controller.GetStatus).Methods("GET")
	poolRouter.HandleFunc("", controller.CancelWaiting).Methods("DELETE")
}
