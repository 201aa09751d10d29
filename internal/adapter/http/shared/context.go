package shared

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
)

type ContextKey string

const (
	PrincipalContextKey ContextKey = "principal"
	UserContextKey      ContextKey = "user"
)

// WithPrincipal stores the authenticated principal and its user on ctx.
func WithPrincipal(ctx context.Context, p *domain.Principal, u *domain.User) context.Context {
	ctx = context.WithValue(ctx, PrincipalContextKey, p)
	return context.WithValue(ctx, UserContextKey, u)
}

// PrincipalFrom returns the principal set by the auth middleware, or nil.
func PrincipalFrom(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(PrincipalContextKey).(*domain.Principal)
	return p
}

// UserFrom returns the authenticated user, or nil.
func UserFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(UserContextKey).(*domain.User)
	return u
}
