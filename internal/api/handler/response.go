package handler

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

// DetailResponse is the error envelope: detail is a string for client and
// internal errors, and a structured object for budget rejections.
type DetailResponse struct {
	Detail any `json:"detail"`
}

func Detail(w http.ResponseWriter, status int, detail any) {
	JSON(w, status, DetailResponse{Detail: detail})
}
