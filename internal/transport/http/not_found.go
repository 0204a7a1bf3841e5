package http

import "net/http"

// NotFoundHandler answers routes no custody endpoint matched with the API's
// JSON error shape instead of the mux default plain-text 404.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
}
