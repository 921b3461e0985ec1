package middleware

import (
	"context"
	"errors"
	"net/http"

	"academy-platform/internal/domain"
	"academy-platform/internal/service"
	"academy-platform/internal/tenant"

	"go.uber.org/zap"
)

type dealerKey struct{}

// TenantFromHost resolves the dealer that owns the request's host and stores
// it, together with its scope, in the request context. Requests for hosts no
// public dealer claims are answered with 404.
func TenantFromHost(resolver service.TenantResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dealer, err := resolver.ResolveByHost(r.Context(), r.Host)
			if err != nil {
				if errors.Is(err, service.ErrTenantNotFound) {
					logger.Debug("No dealer for host", zap.String("host", r.Host))
					RespondWithLocalizedError(w, r, http.StatusNotFound, MsgDealerNotFound)
					return
				}
				logger.Error("Failed to resolve dealer",
					zap.Error(err),
					zap.String("host", r.Host),
				)
				RespondWithLocalizedError(w, r, http.StatusInternalServerError, MsgInternalError)
				return
			}

			scope, err := tenant.NewScope(dealer.ID)
			if err != nil {
				logger.Error("Resolved dealer has no id", zap.String("host", r.Host))
				RespondWithLocalizedError(w, r, http.StatusInternalServerError, MsgInternalError)
				return
			}

			ctx := context.WithValue(r.Context(), dealerKey{}, dealer)
			ctx = tenant.WithScope(ctx, scope)
			recordDealer(ctx, scope.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DealerFromContext returns the dealer stored by TenantFromHost.
func DealerFromContext(ctx context.Context) (*domain.Dealer, bool) {
	dealer, ok := ctx.Value(dealerKey{}).(*domain.Dealer)
	return dealer, ok && dealer != nil
}
