package routes

import (
	"net/http"
	"strings"

	"koshoku_server/controllers"
)

// RequireIdentity rejects requests without a caller identity. The identity
// itself is established by the fronting gateway and forwarded in the
// X-User-Id header; this server trusts it the way a serverless callable
// trusts its invoking framework.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
		if userID == "" {
			controllers.WriteError(w, http.StatusUnauthorized, controllers.CodeUnauthenticated, "missing caller identity")
			return
		}
		next.ServeHTTP(w, r.WithContext(controllers.WithCaller(r.Context(), userID)))
	})
}
