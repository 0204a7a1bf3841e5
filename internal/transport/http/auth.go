package http

import (
	"net/http"
	"strings"

	"github.com/joyelle/jewel-custody/internal/auth"
)

// RequireActor resolves the staff member from a bearer token and stores it
// in the request context. With an empty secret the middleware is a no-op and
// the actor comes from the request body instead (dev mode).
func RequireActor(secret []byte, next http.Handler) http.Handler {
	if len(secret) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, codeInvalidToken, "missing bearer token")
			return
		}

		staffID, err := auth.StaffIDFromToken(token, secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeInvalidToken, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), staffID)))
	})
}
