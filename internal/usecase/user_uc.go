package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserUsecase implements registration, sessions and profile management.
type UserUsecase struct {
	users      domain.UserRepository
	tokens     *auth.TokenManager
	authz      Authorizer
	cascade    *Cascade
	events     EventPublisher
	bcryptCost int
	logger     *logger.Logger
}

func NewUserUsecase(users domain.UserRepository, tokens *auth.TokenManager, authz Authorizer, cascade *Cascade,
	events EventPublisher, bcryptCost int, log *logger.Logger) *UserUsecase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserUsecase{
		users:      users,
		tokens:     tokens,
		authz:      authz,
		cascade:    cascade,
		events:     events,
		bcryptCost: bcryptCost,
		logger:     log.Named("UserUsecase"),
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a user and opens its first session.
func (uc *UserUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	uc.logger.Info("Registering user", zap.String("email", domain.NormalizeEmail(in.Email)))

	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, "", err
	}
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := domain.NewUser(in.FirstName, in.LastName, in.Email, hash)
	if err := uc.users.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			uc.logger.Error("Failed to save user", zap.Error(err))
		}
		return nil, "", err
	}

	token, err := uc.openSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	eventData := map[string]interface{}{
		"user_id":    user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.events.Publish(ctx, SubjectUserRegistered, eventData); err != nil {
		uc.logger.Warn("Failed to publish user.registered event", zap.Error(err), zap.String("user_id", user.ID))
	}

	uc.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, token, nil
}

// Login checks the credentials and opens a new session.
func (uc *UserUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := uc.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrInvalidLogin
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		uc.logger.Info("Login rejected", zap.String("user_id", user.ID))
		return nil, "", domain.ErrInvalidLogin
	}

	token, err := uc.openSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (uc *UserUsecase) openSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		uc.logger.Error("Failed to issue token", zap.String("user_id", user.ID), zap.Error(err))
		return "", err
	}
	if err := uc.users.AddToken(ctx, user.ID, token); err != nil {
		uc.logger.Error("Failed to store token", zap.String("user_id", user.ID), zap.Error(err))
		return "", err
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

// Logout revokes the token the request was authenticated with.
func (uc *UserUsecase) Logout(ctx context.Context, p *domain.Principal) error {
	if err := uc.users.RemoveToken(ctx, p.ID, p.Token); err != nil {
		return err
	}
	uc.logger.Info("User logged out", zap.String("user_id", p.ID))
	return nil
}

// LogoutAll revokes every token of the principal.
func (uc *UserUsecase) LogoutAll(ctx context.Context, p *domain.Principal) error {
	if err := uc.users.ClearTokens(ctx, p.ID); err != nil {
		return err
	}
	uc.logger.Info("User logged out of all sessions", zap.String("user_id", p.ID))
	return nil
}

func (uc *UserUsecase) GetProfile(ctx context.Context, p *domain.Principal, id string) (*domain.User, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceProfile, &access.Target{ID: id}); err != nil {
		return nil, err
	}
	return uc.users.FindByID(ctx, id)
}

func (uc *UserUsecase) ListUsers(ctx context.Context, p *domain.Principal, skip, limit int64) ([]*domain.User, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceProfiles, nil); err != nil {
		return nil, err
	}
	return uc.users.List(ctx, skip, limit)
}

// UpdateUser applies a profile update. Names are capitalised, the email is
// normalised and a new password is hashed.
func (uc *UserUsecase) UpdateUser(ctx context.Context, p *domain.Principal, id string, update domain.UserUpdate) (*domain.User, error) {
	if err := uc.authz.Authorize(p, access.ActionUpdate, access.ResourceProfile, &access.Target{ID: id}); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, domain.NewError(domain.ErrInvalidInput, "You need to provide the fields to be updated!")
	}

	if update.FirstName != nil {
		v := domain.CapitalizeWords(*update.FirstName)
		update.FirstName = &v
	}
	if update.LastName != nil {
		v := domain.CapitalizeWords(*update.LastName)
		update.LastName = &v
	}
	if update.Email != nil {
		v := domain.NormalizeEmail(*update.Email)
		update.Email = &v
	}
	if update.Password != nil {
		if err := domain.ValidatePassword(*update.Password); err != nil {
			return nil, err
		}
		hash, err := uc.hash(*update.Password)
		if err != nil {
			return nil, err
		}
		update.Password = &hash
	}

	user, err := uc.users.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("User updated", zap.String("user_id", id), zap.String("by", p.ID))
	return user, nil
}

// DeleteUser removes a user and every listing it posted.
func (uc *UserUsecase) DeleteUser(ctx context.Context, p *domain.Principal, id string) (*domain.User, error) {
	if err := uc.authz.Authorize(p, access.ActionDelete, access.ResourceProfile, &access.Target{ID: id}); err != nil {
		return nil, err
	}
	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.users.Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := uc.cascade.UserDeleted(ctx, user); err != nil {
		uc.logger.Error("User deleted with incomplete cascade", zap.String("user_id", id), zap.Error(err))
	}
	uc.logger.Info("User deleted", zap.String("user_id", id), zap.Int("listings", len(user.Listings)))
	return user, nil
}

func (uc *UserUsecase) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewError(domain.ErrInvalidInput, "Password must be at most 72 bytes.")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
