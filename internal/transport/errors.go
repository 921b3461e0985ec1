package transport

import (
	"errors"
	"net/http"

	"academy-platform/internal/middleware"
	"academy-platform/internal/service"
	"academy-platform/internal/tenant"

	"go.uber.org/zap"
)

// decodeRequest decodes and validates a JSON body, answering 400 itself when
// that fails. It reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	err := middleware.DecodeAndValidate(r, v)
	if err == nil {
		return true
	}

	logger.Debug("Request validation failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, r, validationErrors)
		return false
	}

	middleware.RespondWithLocalizedError(w, r, http.StatusBadRequest, middleware.MsgInvalidBody)
	return false
}

// respondServiceError maps service errors to HTTP responses. Unexpected
// errors are logged with action and hidden from the client.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, action string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		logger.Debug(action+" rejected", zap.Error(err))
		fields := make([]middleware.ValidationError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, middleware.ValidationError{Field: f.Field, Message: f.Message})
		}
		middleware.RespondWithValidationErrors(w, r, fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrTenantNotFound):
		middleware.RespondWithLocalizedError(w, r, http.StatusNotFound, middleware.MsgDealerNotFound)
	case errors.Is(err, service.ErrGroupNotFound), errors.Is(err, service.ErrSessionNotFound):
		middleware.RespondWithLocalizedError(w, r, http.StatusNotFound, middleware.MsgNotFound)
	case errors.Is(err, service.ErrDealerUnavailable),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrVariantUnavailable),
		errors.Is(err, service.ErrInsufficientStock):
		logger.Info(action+" rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrNoScope):
		logger.Error(action+" called without a dealer scope", zap.String("path", r.URL.Path))
		middleware.RespondWithLocalizedError(w, r, http.StatusUnauthorized, middleware.MsgInvalidToken)
	default:
		logger.Error(action+" failed", zap.Error(err))
		middleware.RespondWithLocalizedError(w, r, http.StatusInternalServerError, middleware.MsgInternalError)
	}
}

// requireScope returns the dealer scope established by auth or host
// middleware.
func requireScope(w http.ResponseWriter, r *http.Request) (tenant.Scope, bool) {
	scope, ok := tenant.FromContext(r.Context())
	if !ok {
		middleware.RespondWithLocalizedError(w, r, http.StatusUnauthorized, middleware.MsgInvalidToken)
		return tenant.Scope{}, false
	}
	return scope, true
}
