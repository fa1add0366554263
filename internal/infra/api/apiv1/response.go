package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/infra/logging"
)

// Response is the envelope of every /api/v1 reply.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Success: true, Message: "success", Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, Response{Success: false, Message: message, Code: code, Errors: fields})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorCodes lists the domain errors surfaced to clients, with status and code.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrMissingMealSelection, http.StatusUnprocessableEntity, "MissingMealSelection"},
	{domain.ErrMealNotOffered, http.StatusUnprocessableEntity, "MealNotOffered"},
	{domain.ErrInvalidPlanConfiguration, http.StatusUnprocessableEntity, "InvalidPlanConfiguration"},
	{domain.ErrInvalidStatusTransition, http.StatusUnprocessableEntity, "InvalidStatusTransition"},
	{domain.ErrInvalidArgument, http.StatusUnprocessableEntity, "InvalidArgument"},
	{domain.ErrSubscriptionNotDeletable, http.StatusConflict, "SubscriptionNotDeletable"},
	{domain.ErrAlreadyExists, http.StatusConflict, "AlreadyExists"},
	{domain.ErrPricingMismatch, http.StatusConflict, "PricingMismatch"},
	{domain.ErrRequestInProgress, http.StatusConflict, "RequestInProgress"},
	{domain.ErrNotFound, http.StatusNotFound, "NotFound"},
}

// writeErr maps err onto the envelope. Unknown errors are logged and hidden.
func writeErr(w http.ResponseWriter, r *http.Request, log *zerolog.Logger, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusUnprocessableEntity, "ValidationFailed", "validation failed", ve.Fields)
		return
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			respondError(w, c.status, c.code, err.Error(), nil)
			return
		}
	}
	logging.With(r.Context(), log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	respondError(w, http.StatusInternalServerError, "Internal", "internal error", nil)
}
