package handler

import "net/http"

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status string `json:"status"`
}

// HandleHealth reports that the process is serving.
//
// HTTP: GET /health
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
