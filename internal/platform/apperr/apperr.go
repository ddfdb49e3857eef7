package apperr

import (
	"errors"
	"net/http"
)

// Kinds. Every domain error wraps exactly one of these.
var (
	ErrValidation = errors.New("validation error")
	ErrLookup     = errors.New("not found")
	ErrState      = errors.New("invalid state")
	ErrConstraint = errors.New("constraint violation")
)

type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

func Lookup(message string) error {
	return &Error{Kind: ErrLookup, Message: message}
}

func State(message string) error {
	return &Error{Kind: ErrState, Message: message}
}

func Constraint(message string) error {
	return &Error{Kind: ErrConstraint, Message: message}
}

// ItemError reports a failure for one entry of a partially applied request.
type ItemError struct {
	Index   int    `json:"index"`
	Key     string `json:"key,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewItemError(index int, key string, err error) ItemError {
	return ItemError{Index: index, Key: key, Kind: Code(err), Message: err.Error()}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrLookup):
		return http.StatusNotFound
	case errors.Is(err, ErrState):
		return http.StatusConflict
	case errors.Is(err, ErrConstraint):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrLookup):
		return "not_found"
	case errors.Is(err, ErrState):
		return "state_error"
	case errors.Is(err, ErrConstraint):
		return "constraint_error"
	default:
		return "internal_error"
	}
}
