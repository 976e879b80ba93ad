package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fkhayef/splitledger/internal/domain"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta contains pagination and other metadata
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// FieldError is one entry of a validation failure
type FieldError struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// MismatchDetails carries the sums of a split that does not add up
type MismatchDetails struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// JSONWithMeta sends a JSON response with pagination metadata
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	ErrorWithDetails(w, status, code, message, nil)
}

// ErrorWithDetails sends an error JSON response with structured details
func ErrorWithDetails(w http.ResponseWriter, status int, code, message string, details interface{}) {
	write(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "FORBIDDEN", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

// DomainError writes the response for a ledger error kind.
// It returns false when err is not one of them, leaving the response unwritten.
func DomainError(w http.ResponseWriter, err error) bool {
	var mismatch *domain.SplitAmountMismatchError

	switch {
	case errors.As(err, &mismatch):
		ErrorWithDetails(w, http.StatusBadRequest, "SPLIT_AMOUNT_MISMATCH", err.Error(), MismatchDetails{
			Expected: mismatch.Expected.StringFixed(domain.Scale),
			Actual:   mismatch.Actual.StringFixed(domain.Scale),
		})
	case errors.Is(err, domain.ErrUnassignedItem):
		Error(w, http.StatusBadRequest, "UNASSIGNED_ITEM", err.Error())
	case errors.Is(err, domain.ErrInvalidSplitInput):
		Error(w, http.StatusBadRequest, "INVALID_SPLIT_INPUT", err.Error())
	case errors.Is(err, domain.ErrValidation):
		ErrorWithDetails(w, http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed", fieldErrors(err))
	case errors.Is(err, domain.ErrUnknownMember):
		Error(w, http.StatusUnprocessableEntity, "UNKNOWN_MEMBER", err.Error())
	case errors.Is(err, domain.ErrLedgerInconsistency):
		Error(w, http.StatusInternalServerError, "LEDGER_INCONSISTENCY", "Ledger is inconsistent")
	default:
		return false
	}
	return true
}

// fieldErrors flattens joined errors into one entry per failure
func fieldErrors(err error) []FieldError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []FieldError
		for _, inner := range joined.Unwrap() {
			out = append(out, fieldErrors(inner)...)
		}
		return out
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return []FieldError{{Field: ve.Field, Reason: ve.Reason}}
	}
	return []FieldError{{Reason: err.Error()}}
}
