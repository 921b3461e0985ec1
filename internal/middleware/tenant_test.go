package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"academy-platform/internal/domain"
	"academy-platform/internal/service"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubResolver struct {
	dealers map[string]*domain.Dealer
	err     error
	hosts   []string
}

func (s *stubResolver) ResolveByHost(ctx context.Context, host string) (*domain.Dealer, error) {
	s.hosts = append(s.hosts, host)
	if s.err != nil {
		return nil, s.err
	}
	if dealer, ok := s.dealers[host]; ok {
		return dealer, nil
	}
	return nil, service.ErrTenantNotFound
}

func TestTenantFromHost_StoresDealerAndScope(t *testing.T) {
	dealer := &domain.Dealer{ID: uuid.New(), Slug: "north-fc", IsActive: true, PublicPageEnabled: true}
	resolver := &stubResolver{dealers: map[string]*domain.Dealer{"north.example.com": dealer}}

	var (
		gotDealer *domain.Dealer
		gotScope  tenant.Scope
	)
	handler := TenantFromHost(resolver, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		gotDealer, ok = DealerFromContext(r.Context())
		require.True(t, ok)
		gotScope, ok = tenant.FromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/storefront", nil)
	req.Host = "north.example.com"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, dealer, gotDealer)
	assert.Equal(t, dealer.ID, gotScope.DealerID())
	assert.Equal(t, []string{"north.example.com"}, resolver.hosts)
}

func TestTenantFromHost_UnknownHostIsNotFound(t *testing.T) {
	called := false
	handler := TenantFromHost(&stubResolver{}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/api/storefront", nil)
	req.Host = "unknown.example.org"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantFromHost_ResolverFailureIsInternalError(t *testing.T) {
	resolver := &stubResolver{err: errors.New("connection refused")}
	handler := TenantFromHost(resolver, zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/api/storefront", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDealerFromContext_Empty(t *testing.T) {
	_, ok := DealerFromContext(context.Background())
	assert.False(t, ok)
}

func TestLoggingMiddleware_RecordsDealer(t *testing.T) {
	dealer := &domain.Dealer{ID: uuid.New()}
	resolver := &stubResolver{dealers: map[string]*domain.Dealer{"example.com": dealer}}

	var trace *requestTrace
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace, _ = r.Context().Value(traceKey{}).(*requestTrace)
		w.WriteHeader(http.StatusNoContent)
	})
	handler := LoggingMiddleware(zap.NewNop())(TenantFromHost(resolver, zap.NewNop())(inner))

	req := httptest.NewRequest("GET", "/api/storefront", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.NotNil(t, trace)
	assert.Equal(t, dealer.ID.String(), trace.dealerID)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
