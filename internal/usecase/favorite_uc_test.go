package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type favoriteFixture struct {
	uc       *FavoriteUsecase
	store    *memoryFavorites
	recorder *memoryRecorder
	listings *MockListingRepository
	users    *MockUserRepository
}

func newFavoriteFixture() *favoriteFixture {
	f := &favoriteFixture{
		store:    newMemoryFavorites(),
		recorder: newMemoryRecorder(),
		listings: new(MockListingRepository),
		users:    new(MockUserRepository),
	}
	f.listings.On("Exists", mock.Anything, "l1").Return(true, nil).Maybe()
	f.users.On("FindByID", mock.Anything, mock.Anything).Return(&domain.User{ID: "u1"}, nil).Maybe()
	f.uc = NewFavoriteUsecase(f.store, f.listings, f.users, newEngine(), f.recorder, nil, logger.NewNop())
	return f
}

func TestFavorite_TwiceConflicts(t *testing.T) {
	f := newFavoriteFixture()
	p := userPrincipal("u1")
	ctx := context.Background()

	_, err := f.uc.Favorite(ctx, p, "l1")
	require.NoError(t, err)

	_, err = f.uc.Favorite(ctx, p, "l1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)
	assert.Equal(t, int64(1), f.recorder.totals[counter.Favorites]["l1"])
}

func TestUnfavorite_WithoutFavoriteConflicts(t *testing.T) {
	f := newFavoriteFixture()
	p := userPrincipal("u1")

	_, err := f.uc.Unfavorite(context.Background(), p, "u1", "l1")
	assert.ErrorIs(t, err, domain.ErrNotFavorited)
	assert.Zero(t, f.recorder.calls)
}

func TestFavoriteThenUnfavorite_NetZero(t *testing.T) {
	f := newFavoriteFixture()
	p := userPrincipal("u1")
	ctx := context.Background()

	_, err := f.uc.Favorite(ctx, p, "l1")
	require.NoError(t, err)
	_, err = f.uc.Unfavorite(ctx, p, "u1", "l1")
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.recorder.totals[counter.Favorites]["l1"])
	assert.Equal(t, 2, f.recorder.calls)
}

func TestFavorite_ConcurrentDuplicatesSucceedOnce(t *testing.T) {
	f := newFavoriteFixture()
	p := userPrincipal("u1")

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Favorite(context.Background(), p, "l1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, f.recorder.calls)
	assert.Equal(t, int64(1), f.recorder.totals[counter.Favorites]["l1"])
}

func TestFavorite_MissingListing(t *testing.T) {
	f := newFavoriteFixture()
	f.listings.On("Exists", mock.Anything, "gone").Return(false, nil)

	_, err := f.uc.Favorite(context.Background(), userPrincipal("u1"), "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.recorder.calls)
}

func TestFavorite_CounterFailureRollsBack(t *testing.T) {
	store := newMemoryFavorites()
	listings := new(MockListingRepository)
	listings.On("Exists", mock.Anything, "l1").Return(true, nil)
	recorder := new(MockRecorder)
	recorder.On("Increment", mock.Anything, counter.Favorites, "l1", int64(1)).Return(errors.New("redis down"))

	uc := NewFavoriteUsecase(store, listings, new(MockUserRepository), newEngine(), recorder, nil, logger.NewNop())
	_, err := uc.Favorite(context.Background(), userPrincipal("u1"), "l1")
	require.Error(t, err)

	// The relation was removed again, so a retry is not a conflict.
	assert.NoError(t, store.Add(context.Background(), "u1", "l1"))
	recorder.AssertExpectations(t)
}

func TestUnfavorite_Ownership(t *testing.T) {
	f := newFavoriteFixture()
	ctx := context.Background()
	require.NoError(t, f.store.Add(ctx, "u2", "l1"))

	_, err := f.uc.Unfavorite(ctx, userPrincipal("u1"), "u2", "l1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Unfavorite(ctx, adminPrincipal("a1"), "u2", "l1")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), f.recorder.totals[counter.Favorites]["l1"])
}

func TestFavorites_List(t *testing.T) {
	listings := new(MockListingRepository)
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, "u2").Return(&domain.User{ID: "u2", Favorites: []string{"l1", "l2"}}, nil)
	users.On("FindByID", mock.Anything, "u3").Return(&domain.User{ID: "u3"}, nil)
	want := []*domain.Listing{{ID: "l1"}, {ID: "l2"}}
	listings.On("List", mock.Anything, domain.ListingFilter{IDs: []string{"l1", "l2"}}).Return(want, nil)

	uc := NewFavoriteUsecase(newMemoryFavorites(), listings, users, newEngine(), newMemoryRecorder(), nil, logger.NewNop())

	got, err := uc.List(context.Background(), userPrincipal("u1"), "u2")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = uc.List(context.Background(), userPrincipal("u1"), "u3")
	require.NoError(t, err)
	assert.Empty(t, got)
	listings.AssertNumberOfCalls(t, "List", 1)
}
