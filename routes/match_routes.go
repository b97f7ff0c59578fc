package routes

import (
	"koshoku_server/controllers"
	"koshoku_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match lookups under /api/match
func RegisterMatchRoutes(r *mux.Router, poolService *services.PoolService) {
	controller := controllers.NewMatchController(poolService)

	matchRouter := r.PathPrefix("/api/match").Subrouter()
	matchRouter.Use(RequireIdentity)

	matchRouter.HandleFunc("/{matchId}", controller.GetMatch).Methods("GET")
}
