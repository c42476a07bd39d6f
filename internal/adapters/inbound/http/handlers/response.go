package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/architeacher/items/internal/domain/model"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"

	codeInvalidID          = "INVALID_ID"
	codeInvalidJSON        = "INVALID_JSON"
	codeValidationFailed   = "VALIDATION_FAILED"
	codeNotFound           = "NOT_FOUND"
	codeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	codeServiceUnavailable = "SERVICE_UNAVAILABLE"
	codeInternalError      = "INTERNAL_ERROR"

	msgInvalidItemID       = "Invalid item ID"
	msgInvalidRequestBody  = "Request body must be a valid JSON object"
	msgItemNotFound        = "Item not found"
	msgStoreUnavailable    = "Service temporarily unavailable"
	msgInternalError       = "Internal server error"
	msgItemDeleted         = "Item deleted successfully"
	msgMethodNotAllowedFmt = "Method %s not allowed on %s"
	msgRouteNotFoundFmt    = "Cannot %s %s"
)

// ErrorResponse is the body of every non 2xx answer.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSONResponse(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// writeDomainError maps use case errors onto HTTP answers. Internal details
// never reach the client.
func (h *ItemsHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors *model.ValidationErrors

	switch {
	case errors.As(err, &validationErrors):
		writeErrorResponse(w, http.StatusBadRequest, codeValidationFailed, validationErrors.Error())
	case errors.Is(err, model.ErrInvalidItemID):
		writeErrorResponse(w, http.StatusBadRequest, codeInvalidID, msgInvalidItemID)
	case errors.Is(err, model.ErrItemNotFound):
		writeErrorResponse(w, http.StatusNotFound, codeNotFound, msgItemNotFound)
	case errors.Is(err, model.ErrStoreUnavailable):
		writeErrorResponse(w, http.StatusServiceUnavailable, codeServiceUnavailable, msgStoreUnavailable)
	default:
		h.logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeErrorResponse(w, http.StatusInternalServerError, codeInternalError, msgInternalError)
	}
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, http.StatusNotFound, codeNotFound, fmt.Sprintf(msgRouteNotFoundFmt, r.Method, r.URL.Path))
}

// MethodNotAllowed answers requests to a known path with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, fmt.Sprintf(msgMethodNotAllowedFmt, r.Method, r.URL.Path))
}
