package routes

import (
	"koshoku_server/controllers"
	"koshoku_server/services"

	"github.com/gorilla/mux"
)

// RegisterProfileRoutes sets up routes for user profiles under /api/profile
func RegisterProfileRoutes(r *mux.Router, profileService *services.ProfileService) {
	controller := controllers.NewProfileController(profileService)

	profileRouter := r.PathPrefix("/api/profile").Subrouter()
	profileRouter.Use(RequireIdentity)

	profileRouter.HandleFunc("", controller.Register).Methods("POST")
	profileRouter.HandleFunc("", controller.Get).Methods("GET")
}
