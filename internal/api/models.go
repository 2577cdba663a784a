package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "fitnesstime/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps service-layer sentinels to response codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrEventFull):
		http.Error(w, "Event is full", http.StatusConflict)
	case errors.Is(err, apperrors.ErrAlreadyJoined):
		http.Error(w, "Already joined", http.StatusConflict)
	case errors.Is(err, apperrors.ErrNotMember):
		http.Error(w, "Not a member", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrInvalidInterval), errors.Is(err, apperrors.ErrInvalidWindow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) {
			http.Error(w, httpErr.Message, httpErr.Code)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
