package http

import (
	"encoding/json"
	"net/http"
)

// HealthHandler reports liveness for the dashboard's polling probe. It
// answers JSON like every other endpoint of the API.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
