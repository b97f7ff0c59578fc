package controllers

import (
	"context"
	"net/http"
)

type contextKey string

const callerKey contextKey = "callerId"

// WithCaller attaches the authenticated caller identity to the context.
// Populated by the identity middleware in routes.
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey, userID)
}

// CallerID returns the authenticated caller identity of the request.
func CallerID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(callerKey).(string)
	return userID, ok && userID != ""
}

// requireCaller extracts the caller identity or writes an unauthenticated
// error. Handlers behind the identity middleware always pass; this is the
// backstop for a handler mounted without it.
func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := CallerID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, CodeUnauthenticated, "missing caller identity")
	}
	return userID, ok
}
