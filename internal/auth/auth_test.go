package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
	domain.UserRepository
}

func (m *MockUserRepository) FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error) {
	args := m.Called(ctx, id, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.Issue("u1")
	require.NoError(t, err)

	id, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := tm.Issue("u1")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResolve_HeaderErrors(t *testing.T) {
	r := NewResolver(NewTokenManager("secret", time.Hour), &MockUserRepository{}, logger.NewNop())
	ctx := context.Background()

	_, _, err := r.Resolve(ctx, "")
	assert.Equal(t, domain.ErrMissingAuthHeader, err)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	for _, h := range []string{"Basic abc", "Bearer ", "bearer abc", "Bearer    "} {
		_, _, err = r.Resolve(ctx, h)
		assert.Equal(t, domain.ErrInvalidAuthHeader, err, h)
	}

	_, _, err = r.Resolve(ctx, "Bearer not-a-jwt")
	assert.Equal(t, domain.ErrInvalidToken, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestResolve_BuildsPrincipal(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	repo := &MockUserRepository{}
	r := NewResolver(tm, repo, logger.NewNop())

	token, err := tm.Issue("u1")
	require.NoError(t, err)
	user := &domain.User{ID: "u1", Role: domain.RoleUser, Listings: []string{"l1"}, Tokens: []string{token}}
	repo.On("FindByIDAndToken", mock.Anything, "u1", token).Return(user, nil)

	p, got, err := r.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Same(t, user, got)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, token, p.Token)
	assert.True(t, p.OwnsListing("l1"))
	repo.AssertExpectations(t)
}

func TestResolve_RevokedAfterLogoutAll(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	repo := &MockUserRepository{}
	r := NewResolver(tm, repo, logger.NewNop())

	token, err := tm.Issue("u1")
	require.NoError(t, err)
	// The token verifies but is no longer in the user's token list.
	repo.On("FindByIDAndToken", mock.Anything, "u1", token).Return(nil, domain.NewError(domain.ErrNotFound, "no user"))

	_, _, err = r.Resolve(context.Background(), "Bearer "+token)
	assert.Equal(t, domain.ErrInvalidToken, err)
}

func TestResolve_RepositoryFailure(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	repo := &MockUserRepository{}
	r := NewResolver(tm, repo, logger.NewNop())

	token, err := tm.Issue("u1")
	require.NoError(t, err)
	boom := errors.New("connection reset")
	repo.On("FindByIDAndToken", mock.Anything, "u1", token).Return(nil, boom)

	_, _, err = r.Resolve(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, boom)
}
