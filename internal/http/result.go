package httpapi

import (
	"errors"
	"net/http"

	"loadmap/internal/service"

	"go.uber.org/zap"
)

// ErrorBody uniform error payload: {"error": {"code": 404, "message": "..."}}
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail code repeats the HTTP status.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: status, Message: message}})
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Not Found")
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// statusOf maps a service error to its HTTP status.
func statusOf(err error) int {
	var ve *service.ValidationError
	var ce *service.ConflictError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError translates err into the error envelope. Internal errors
// are logged and their details withheld from the client.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
		writeError(w, status, "internal server error")
		return
	}
	logger.Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
	writeError(w, status, err.Error())
}
