package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/seekershq/seekers-backend/pkg/apperr"
)

// envelope is the common response shape: {"success": ..., "message": ..., ...}.
type envelope map[string]interface{}

func respondJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

func respondSuccess(w http.ResponseWriter, status int, message string, extra envelope) {
	payload := envelope{"success": true}
	if message != "" {
		payload["message"] = message
	}
	for k, v := range extra {
		payload[k] = v
	}
	respondJSON(w, status, payload)
}

// respondError maps service errors to HTTP statuses. Internal details are
// logged, never leaked.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	message := "Something went wrong. Please try again."

	var e *apperr.Error
	if errors.As(err, &e) && e.Kind != apperr.KindInternal {
		message = e.Message
	}
	if status >= http.StatusInternalServerError {
		log.Printf("⚠️ internal error: %v", err)
	}

	payload := envelope{"success": false, "message": message}
	if e != nil && e.Kind == apperr.KindThrottled && e.MinutesLeft > 0 {
		payload["minutes_left"] = e.MinutesLeft
	}
	respondJSON(w, status, payload)
}

func respondValidation(w http.ResponseWriter, message string) {
	respondError(w, apperr.Validation(message))
}

// pagination builds the listing metadata block.
func pagination(page, limit, total int) envelope {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return envelope{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
	}
}
