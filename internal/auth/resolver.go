package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Resolver turns an Authorization header into the principal of the request.
// A token only resolves while it is in the user's active token list, so logout
// takes effect on the next request.
type Resolver struct {
	tokens *TokenManager
	users  domain.UserRepository
	logger *logger.Logger
}

func NewResolver(tokens *TokenManager, users domain.UserRepository, log *logger.Logger) *Resolver {
	return &Resolver{tokens: tokens, users: users, logger: log.Named("PrincipalResolver")}
}

// Resolve returns the principal and the stored user behind header.
func (r *Resolver) Resolve(ctx context.Context, header string) (*domain.Principal, *domain.User, error) {
	if header == "" {
		return nil, nil, domain.ErrMissingAuthHeader
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, nil, domain.ErrInvalidAuthHeader
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return nil, nil, domain.ErrInvalidAuthHeader
	}

	userID, err := r.tokens.Parse(token)
	if err != nil {
		r.logger.Debug("Token verification failed", zap.Error(err))
		return nil, nil, domain.ErrInvalidToken
	}

	user, err := r.users.FindByIDAndToken(ctx, userID, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("Token is not active for user", zap.String("user_id", userID))
			return nil, nil, domain.ErrInvalidToken
		}
		r.logger.Error("Failed to load user for token", zap.String("user_id", userID), zap.Error(err))
		return nil, nil, err
	}

	return domain.NewPrincipal(user, token), user, nil
}
