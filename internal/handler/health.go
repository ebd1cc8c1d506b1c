package handler

import (
	"net/http"
	"time"
)

// HealthHandler reports process liveness and uptime.
func HealthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]any{
			"status":         "healthy",
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		})
	}
}
