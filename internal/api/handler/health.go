package handler

import (
	"net/http"
)

type HealthResponse struct {
	Status string `json:"status"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// RootInfo describes the service for the index endpoint.
type RootInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Health  string `json:"health"`
}

func Root(name, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, RootInfo{
			Name:    name,
			Version: version,
			Status:  "running",
			Health:  "/api/health",
		})
	}
}
