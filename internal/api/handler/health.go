package handler

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health reports process liveness only. Dependency state belongs to Ready.
func Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "clipstore",
	})
}

// PingFunc checks one backing dependency.
type PingFunc func(ctx context.Context) error

type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Ready builds a readiness handler over named dependency checks. Any failing
// check turns the response into a 503 with the failure listed per component.
func Ready(checks map[string]PingFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp := ReadyResponse{
			Status: "ok",
			Checks: make(map[string]string, len(checks)),
		}
		status := http.StatusOK
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		JSON(w, status, resp)
	}
}
