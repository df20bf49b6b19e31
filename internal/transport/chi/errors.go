package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	logpkg "github.com/kailas-cloud/fieldcodec/internal/logger"
)

// ErrorCode is the machine-readable error code in an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeUnauthorized         ErrorCode = "unauthorized"
	CodeFieldNotFound        ErrorCode = "field_not_found"
	CodeDocumentNotFound     ErrorCode = "document_not_found"
	CodeFieldNotSortable     ErrorCode = "field_not_sortable"
	CodeFieldNotReadable     ErrorCode = "field_not_readable"
	CodeCardinalityViolation ErrorCode = "cardinality_violation"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrFieldNotFound, http.StatusNotFound, CodeFieldNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrUnsupportedSort, http.StatusBadRequest, CodeFieldNotSortable),
		sentinelHandler(domain.ErrUnsupportedAccess, http.StatusBadRequest, CodeFieldNotReadable),
		sentinelHandler(domain.ErrCardinalityViolation, http.StatusBadRequest, CodeCardinalityViolation),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnknownFieldType, http.StatusBadRequest, CodeValidationFailed),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// FieldError messages name the field and are safe to return.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			msg = fe.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

// handleDomainError maps err to a reply. Anything unmapped, including malformed
// index bytes, is an internal error.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
