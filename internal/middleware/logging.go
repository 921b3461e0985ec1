package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// LoggingMiddleware logs HTTP requests and responses
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Get request ID from context (set by chi middleware.RequestID)
			requestID := middleware.GetReqID(r.Context())

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// Inner middleware records the dealer here once it is known
			trace := &requestTrace{}
			r = r.WithContext(context.WithValue(r.Context(), traceKey{}, trace))

			// Log request
			logger.Info("Request started",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("host", r.Host),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			)

			// Call next handler
			next.ServeHTTP(ww, r)

			// Calculate duration
			duration := time.Since(start)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", duration),
			}
			if dealer := trace.dealerID; dealer != "" {
				fields = append(fields, zap.String("dealer_id", dealer))
			}

			// Log response
			logger.Info("Request completed", fields...)
		})
	}
}

type traceKey struct{}

type requestTrace struct {
	dealerID string
}

// recordDealer attaches the dealer serving the request to its completion log line.
func recordDealer(ctx context.Context, dealerID string) {
	if trace, ok := ctx.Value(traceKey{}).(*requestTrace); ok {
		trace.dealerID = dealerID
	}
}
