package controllers

import (
	"net/http"

	"github.com/mangohub/mangostore-backend/api/responses"
)

// Health reports liveness for load balancers and uptime checks.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
