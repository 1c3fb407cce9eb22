package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

const timeLayout = time.RFC3339

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(payload)
}
