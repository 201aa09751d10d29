package middleware

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
)

// PrincipalResolver is satisfied by *auth.Resolver.
type PrincipalResolver interface {
	Resolve(ctx context.Context, header string) (*domain.Principal, *domain.User, error)
}

// AuthMiddleware resolves the Authorization header into a principal.
type AuthMiddleware struct {
	resolver  PrincipalResolver
	responder *shared.Responder
}

func NewAuthMiddleware(resolver PrincipalResolver, responder *shared.Responder) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, responder: responder}
}

// Authenticate rejects requests without an active session and stores the
// principal on the request context otherwise.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, u, err := m.resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			m.responder.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.WithPrincipal(r.Context(), p, u)))
	})
}
