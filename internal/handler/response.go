package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"practicevault/internal/domain"
)

// writeError сопоставляет виды ошибок ядра с HTTP-статусами.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrQuotaExceeded):
		status = http.StatusInsufficientStorage
	case errors.Is(err, domain.ErrStorageBackend):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrPartialFailure):
		status = http.StatusInternalServerError
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[Handler] %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handler] error encoding response: %v", err)
	}
}
