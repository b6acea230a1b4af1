package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
	"github.com/tdjsnelling/babel/bookmark"
	"github.com/tdjsnelling/babel/search"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIMeta carries response metadata.
type APIMeta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

func meta(w http.ResponseWriter) *APIMeta {
	return &APIMeta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: w.Header().Get(requestIDHeader),
	}
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta(w),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, apiErr *APIError) {
	response := APIResponse{
		Success: false,
		Error:   apiErr,
		Meta:    meta(w),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// classify maps an error to an HTTP status and error code.
func classify(err error) (int, *APIError) {
	apiErr := &APIError{Message: err.Error()}

	var fe *babel.FieldError
	if errors.As(err, &fe) {
		apiErr.Field = fe.Field
	}

	switch {
	case errors.Is(err, bookmark.ErrNotFound):
		apiErr.Code = "NOT_FOUND"
		return http.StatusNotFound, apiErr
	case errors.Is(err, babel.ErrOutOfBounds):
		apiErr.Code = "OUT_OF_BOUNDS"
	case errors.Is(err, babel.ErrInvalidSymbol):
		apiErr.Code = "INVALID_SYMBOL"
	case errors.Is(err, babel.ErrMalformedIdentifier):
		apiErr.Code = "MALFORMED_IDENTIFIER"
	case errors.Is(err, search.ErrUnknownMode):
		apiErr.Code = "UNKNOWN_MODE"
	default:
		apiErr.Code = "INTERNAL"
		return http.StatusInternalServerError, apiErr
	}
	return http.StatusBadRequest, apiErr
}
