package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"evalportal/internal/platform/apperr"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailError maps a domain error onto status and code by its kind. Errors of no
// known kind are logged and answered with a generic 500.
func FailError(w http.ResponseWriter, err error, requestID string) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err, "request_id", requestID)
		Fail(w, status, apperr.Code(err), "internal server error", requestID)
		return
	}
	body := &Error{Code: apperr.Code(err), Message: err.Error()}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body.Field = appErr.Field
		// Wrapping adds context to the message; keep it.
		if err == error(appErr) {
			body.Message = appErr.Message
		}
	}
	WriteJSON(w, status, Envelope{Success: false, Error: body, RequestID: requestID})
}
