package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"academy-platform/internal/cache"
	"academy-platform/internal/domain"
	"academy-platform/internal/repository"
	"academy-platform/internal/tenant"

	"go.uber.org/zap"
)

// TenantResolver maps a request hostname to the dealer whose storefront it serves
type TenantResolver interface {
	ResolveByHost(ctx context.Context, host string) (*domain.Dealer, error)
}

type tenantResolver struct {
	dealers      repository.DealerRepository
	cache        cache.DealerCache
	baseDomain   string
	fallbackSlug string
	logger       *zap.Logger
}

// NewTenantResolver creates a TenantResolver. baseDomain enables
// "<label>.<baseDomain>" subdomain matching; fallbackSlug, when set, names
// the dealer served for hosts nothing else claims.
func NewTenantResolver(
	dealers repository.DealerRepository,
	dealerCache cache.DealerCache,
	baseDomain string,
	fallbackSlug string,
	logger *zap.Logger,
) TenantResolver {
	if dealerCache == nil {
		dealerCache = cache.NoopDealerCache{}
	}
	return &tenantResolver{
		dealers:      dealers,
		cache:        dealerCache,
		baseDomain:   NormalizeHost(baseDomain),
		fallbackSlug: strings.TrimSpace(fallbackSlug),
		logger:       logger,
	}
}

// NormalizeHost lowercases host and strips surrounding space, any port, a
// trailing dot and a leading "www.".
func NormalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))

	if strings.HasPrefix(h, "[") {
		if end := strings.Index(h, "]"); end > 0 {
			h = h[1:end]
		}
	} else if i := strings.LastIndex(h, ":"); i >= 0 && strings.Count(h, ":") == 1 {
		h = h[:i]
	}

	h = strings.TrimSuffix(h, ".")
	h = strings.TrimPrefix(h, "www.")
	return h
}

// subdomainLabel returns the first label of host when host sits directly or
// indirectly under baseDomain.
func subdomainLabel(host, baseDomain string) string {
	if baseDomain == "" || !strings.HasSuffix(host, "."+baseDomain) {
		return ""
	}
	rest := strings.TrimSuffix(host, "."+baseDomain)
	if i := strings.Index(rest, "."); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// ResolveByHost returns the active, publicly enabled dealer for host, trying
// the dealer's own domain columns, then verified aliases, then the fallback
// slug. It returns ErrTenantNotFound when none applies.
func (s *tenantResolver) ResolveByHost(ctx context.Context, host string) (*domain.Dealer, error) {
	h := NormalizeHost(host)

	if h != "" {
		if dealer := s.fromCache(ctx, h); dealer != nil {
			return dealer, nil
		}

		dealer, err := s.dealers.FindByOwnDomain(ctx, h, subdomainLabel(h, s.baseDomain))
		if err == nil && dealer.IsPublic() {
			s.remember(ctx, h, dealer)
			return dealer, nil
		}
		if err != nil && !errors.Is(err, repository.ErrDealerNotFound) {
			return nil, fmt.Errorf("failed to resolve dealer by domain: %w", err)
		}

		dealer, err = s.dealers.FindByVerifiedAlias(ctx, h)
		if err == nil && dealer.IsPublic() {
			s.remember(ctx, h, dealer)
			return dealer, nil
		}
		if err != nil && !errors.Is(err, repository.ErrDealerNotFound) {
			return nil, fmt.Errorf("failed to resolve dealer by alias: %w", err)
		}
	}

	if s.fallbackSlug == "" {
		return nil, ErrTenantNotFound
	}

	dealer, err := s.dealers.FindBySlug(ctx, s.fallbackSlug)
	if err != nil {
		if errors.Is(err, repository.ErrDealerNotFound) {
			s.logger.Warn("Fallback dealer does not exist", zap.String("slug", s.fallbackSlug))
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to resolve fallback dealer: %w", err)
	}
	if !dealer.IsPublic() {
		return nil, ErrTenantNotFound
	}

	s.logger.Debug("Host served by fallback dealer",
		zap.String("host", h),
		zap.String("slug", s.fallbackSlug),
	)
	return dealer, nil
}

// fromCache returns the cached dealer for host if it is still public.
// Cache failures only cost a database lookup.
func (s *tenantResolver) fromCache(ctx context.Context, host string) *domain.Dealer {
	id, ok, err := s.cache.Get(ctx, host)
	if err != nil {
		s.logger.Warn("Dealer cache read failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	scope, err := tenant.NewScope(id)
	if err != nil {
		return nil
	}

	dealer, err := s.dealers.Get(ctx, scope)
	if err == nil && dealer.IsPublic() {
		return dealer
	}

	if err := s.cache.Delete(ctx, host); err != nil {
		s.logger.Warn("Dealer cache delete failed", zap.Error(err))
	}
	return nil
}

func (s *tenantResolver) remember(ctx context.Context, host string, dealer *domain.Dealer) {
	if err := s.cache.Set(ctx, host, dealer.ID); err != nil {
		s.logger.Warn("Dealer cache write failed", zap.Error(err))
	}
}
