// Package tenant carries the dealer a request is allowed to act on.
//
// A Scope is the only way repositories accept a tenant. It can be built only
// from a non-nil dealer id, and repositories reject the zero Scope before
// issuing any query, so a call site that forgets the tenant fails loudly
// instead of reading across dealers.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNoScope = errors.New("tenant scope is required")

// Scope identifies the dealer whose rows a data-access call may touch.
type Scope struct {
	dealerID uuid.UUID
}

// NewScope returns a Scope for dealerID, or ErrNoScope for uuid.Nil.
func NewScope(dealerID uuid.UUID) (Scope, error) {
	if dealerID == uuid.Nil {
		return Scope{}, ErrNoScope
	}
	return Scope{dealerID: dealerID}, nil
}

// ParseScope builds a Scope from a textual dealer id, as found in token claims.
func ParseScope(dealerID string) (Scope, error) {
	id, err := uuid.Parse(dealerID)
	if err != nil {
		return Scope{}, ErrNoScope
	}
	return NewScope(id)
}

func (s Scope) DealerID() uuid.UUID {
	return s.dealerID
}

// Check returns ErrNoScope for the zero Scope.
func (s Scope) Check() error {
	if s.dealerID == uuid.Nil {
		return ErrNoScope
	}
	return nil
}

func (s Scope) String() string {
	return s.dealerID.String()
}

type contextKey struct{}

// WithScope stores s in ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the Scope stored by WithScope.
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(contextKey{}).(Scope)
	if !ok || s.Check() != nil {
		return Scope{}, false
	}
	return s, true
}
