package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"koshoku_server/services"
)

// Error codes surfaced to clients. Fixed small taxonomy; everything the
// services can fail with maps into one of these.
const (
	CodeUnauthenticated   = "unauthenticated"
	CodeInvalidArgument   = "invalid-argument"
	CodeNotFound          = "not-found"
	CodeResourceExhausted = "resource-exhausted"
	CodeInternal          = "internal"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError sends a typed error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: message},
	})
}

// writeServiceError maps a service-layer error onto the error taxonomy.
// Transient store conflicts are retried inside the services; one leaking
// this far is an internal error as far as the client is concerned.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, "record not found")
	case errors.Is(err, services.ErrRoomFull):
		WriteError(w, http.StatusConflict, CodeResourceExhausted, "room is full")
	default:
		log.Printf("Internal error: %v", err)
		WriteError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
