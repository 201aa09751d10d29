package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// InternalErrorMessage is returned for every unexpected failure.
const InternalErrorMessage = "Something went very wrong!"

// ErrorResponse is the body of every error reply. Status is "fail" for 4xx
// and "error" for 5xx.
type ErrorResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError carries the field errors of a rejected request body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string { return "Validation failed." }

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// Responder writes JSON replies and maps errors to status codes.
type Responder struct {
	logger  *logger.Logger
	metrics *metrics.MetricsManager
}

func NewResponder(log *logger.Logger, m *metrics.MetricsManager) *Responder {
	return &Responder{logger: log.Named("HTTP"), metrics: m}
}

// JSON writes data with the given status code.
func (rs *Responder) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// Error maps err to a status code and writes the error body.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := StatusFor(err)
	body := ErrorResponse{Status: "fail", Message: err.Error()}

	var verr *ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		body.Status = "error"
		body.Message = InternalErrorMessage
		rs.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		rs.logger.Debug("Request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("message", body.Message))
	}
	rs.metrics.ObserveAPIError(kind)
	rs.JSON(w, status, body)
}

// StatusFor returns the HTTP status and a short kind label for err.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusBadRequest, "unauthenticated"
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized, "invalid_credential"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
