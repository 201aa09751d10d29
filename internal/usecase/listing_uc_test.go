package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticCategories map[string]bool

func (s staticCategories) Exists(_ context.Context, path string) (bool, error) {
	return s[path], nil
}

type listingFixture struct {
	uc        *ListingUsecase
	listings  *MockListingRepository
	users     *MockUserRepository
	favorites *MockFavoriteRepository
	cache     *MockCache
	storage   *MockStorage
	notifier  *MockNotifier
	events    *MockPublisher
	recorder  *memoryRecorder
}

func newListingFixture(withStorage bool) *listingFixture {
	f := &listingFixture{
		listings:  new(MockListingRepository),
		users:     new(MockUserRepository),
		favorites: new(MockFavoriteRepository),
		cache:     new(MockCache),
		storage:   new(MockStorage),
		notifier:  new(MockNotifier),
		events:    new(MockPublisher),
		recorder:  newMemoryRecorder(),
	}
	deps := ListingDeps{
		Listings:   f.listings,
		Users:      f.users,
		Categories: staticCategories{"/bikes": true, "/bikes/road": true},
		Authz:      newEngine(),
		Recorder:   f.recorder,
		Cache:      f.cache,
		Notifier:   f.notifier,
		Events:     f.events,
		Cascade:    NewCascade(f.users, f.listings, f.favorites, f.recorder, f.cache, f.events, logger.NewNop()),
	}
	if withStorage {
		deps.Storage = f.storage
	}
	f.uc = NewListingUsecase(deps, logger.NewNop())
	return f
}

func TestCreateListing(t *testing.T) {
	f := newListingFixture(false)
	p := userPrincipal("u1")
	f.listings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Listing")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Listing).ID = "l1" }).
		Return(nil)
	f.users.On("AddListing", mock.Anything, "u1", "l1").Return(nil)
	f.users.On("FindByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Email: "a@b.c", FirstName: "Ann"}, nil)
	f.notifier.On("ListingCreated", mock.Anything, "a@b.c", "Ann", "Road bike").Return(errors.New("smtp down"))
	f.events.On("Publish", mock.Anything, SubjectListingCreated, mock.Anything).Return(nil)

	listing, err := f.uc.Create(context.Background(), p, CreateListingInput{
		Title:    " Road bike ",
		Category: "Bikes/Road",
		Price:    250,
		Currency: "eur",
		Photos:   domain.Photos{Photos: []string{"https://img/1.jpg"}},
	})
	require.NoError(t, err, "a failed email must not fail the request")
	assert.Equal(t, "Road bike", listing.Title)
	assert.Equal(t, "/bikes/road", listing.Category)
	assert.Equal(t, "EUR", listing.Currency)
	assert.Equal(t, "https://img/1.jpg", listing.Photos.Cover)
	assert.True(t, p.OwnsListing("l1"))
	f.users.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCreateListing_UnknownCategory(t *testing.T) {
	f := newListingFixture(false)
	_, err := f.uc.Create(context.Background(), userPrincipal("u1"), CreateListingInput{Title: "x", Category: "/cars"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	f.listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateListing_LinkFailureRemovesListing(t *testing.T) {
	f := newListingFixture(false)
	p := userPrincipal("u1")
	f.listings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Listing")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Listing).ID = "l1" }).
		Return(nil)
	f.users.On("AddListing", mock.Anything, "u1", "l1").Return(errors.New("mongo down"))
	f.listings.On("Delete", mock.Anything, "l1").Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := f.uc.Create(ctx, p, CreateListingInput{Title: "Road bike", Category: "/bikes", Price: 10, Currency: "EUR"})
	require.Error(t, err)
	f.listings.AssertCalled(t, "Delete", mock.Anything, "l1")
	assert.False(t, p.OwnsListing("l1"))
	f.notifier.AssertNotCalled(t, "ListingCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, SubjectListingCreated, mock.Anything)
}

func TestGetListing_ReadThroughAndView(t *testing.T) {
	f := newListingFixture(false)
	stored := &domain.Listing{ID: "l1", PostedBy: "u2"}
	f.cache.On("Get", mock.Anything, "l1").Return(nil, nil).Once()
	f.listings.On("FindByID", mock.Anything, "l1").Return(stored, nil).Once()
	f.cache.On("Set", mock.Anything, stored).Return(nil).Once()

	got, err := f.uc.Get(context.Background(), userPrincipal("u1"), "l1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	f.cache.On("Get", mock.Anything, "l1").Return(stored, nil).Once()
	_, err = f.uc.Get(context.Background(), userPrincipal("u3"), "l1")
	require.NoError(t, err)

	f.listings.AssertNumberOfCalls(t, "FindByID", 1)
	assert.Equal(t, int64(2), f.recorder.totals[counter.Views]["l1"])
}

func TestGetListing_CacheErrorFallsBack(t *testing.T) {
	f := newListingFixture(false)
	stored := &domain.Listing{ID: "l1"}
	f.cache.On("Get", mock.Anything, "l1").Return(nil, errors.New("redis down"))
	f.cache.On("Set", mock.Anything, stored).Return(errors.New("redis down"))
	f.listings.On("FindByID", mock.Anything, "l1").Return(stored, nil)

	got, err := f.uc.Get(context.Background(), userPrincipal("u1"), "l1")
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ID)
}

func TestUpdateListing_Ownership(t *testing.T) {
	f := newListingFixture(false)
	f.listings.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", PostedBy: "u1"}, nil)
	f.listings.On("Update", mock.Anything, "l1", mock.Anything).Return(&domain.Listing{ID: "l1", Title: "new"}, nil)
	f.cache.On("Delete", mock.Anything, "l1").Return(nil)
	f.events.On("Publish", mock.Anything, SubjectListingUpdated, mock.Anything).Return(nil)

	title := "new"
	_, err := f.uc.Update(context.Background(), userPrincipal("u2", "l7"), "l1", domain.ListingUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.uc.Update(context.Background(), userPrincipal("u1", "l1"), "l1", domain.ListingUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)

	_, err = f.uc.Update(context.Background(), adminPrincipal("a1"), "l1", domain.ListingUpdate{Title: &title})
	require.NoError(t, err)

	bad := "/cars"
	_, err = f.uc.Update(context.Background(), adminPrincipal("a1"), "l1", domain.ListingUpdate{Category: &bad})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	f.listings.AssertNumberOfCalls(t, "Update", 2)
	f.cache.AssertNumberOfCalls(t, "Delete", 2)
}

func TestDeleteListing_Cascade(t *testing.T) {
	f := newListingFixture(false)
	listing := &domain.Listing{ID: "l1", PostedBy: "u1"}
	f.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	f.listings.On("Delete", mock.Anything, "l1").Return(nil)
	f.users.On("RemoveListing", mock.Anything, "u1", "l1").Return(nil)
	f.favorites.On("RemoveFromAll", mock.Anything, "l1").Return(int64(2), nil)
	f.cache.On("Delete", mock.Anything, "l1").Return(nil)
	f.events.On("Publish", mock.Anything, SubjectListingDeleted, mock.Anything).Return(errors.New("nats down"))

	p := userPrincipal("u1", "l1")
	_, err := f.uc.Delete(context.Background(), p, "l1")
	require.NoError(t, err)
	assert.False(t, p.OwnsListing("l1"))
	f.users.AssertExpectations(t)
	f.favorites.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestDeleteListing_NotFound(t *testing.T) {
	f := newListingFixture(false)
	f.listings.On("FindByID", mock.Anything, "nope").Return(nil, domain.ErrListingNotFound)

	_, err := f.uc.Delete(context.Background(), adminPrincipal("a1"), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUploadPhoto(t *testing.T) {
	f := newListingFixture(true)
	f.listings.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", PostedBy: "u1"}, nil)
	body := strings.NewReader("jpeg-bytes")
	f.storage.On("Upload", mock.Anything, "l1", "bike.jpg", "image/jpeg", body, int64(10)).Return("http://minio/p.jpg", nil)
	f.listings.On("AddPhoto", mock.Anything, "l1", "http://minio/p.jpg").
		Return(&domain.Listing{ID: "l1", Photos: domain.Photos{Cover: "http://minio/p.jpg", Photos: []string{"http://minio/p.jpg"}}}, nil)
	f.cache.On("Delete", mock.Anything, "l1").Return(nil)

	p := userPrincipal("u1", "l1")
	got, err := f.uc.UploadPhoto(context.Background(), p, "l1", PhotoUpload{FileName: "bike.jpg", ContentType: "image/jpeg", Size: 10, Body: body})
	require.NoError(t, err)
	assert.Equal(t, "http://minio/p.jpg", got.Photos.Cover)

	_, err = f.uc.UploadPhoto(context.Background(), p, "l1", PhotoUpload{FileName: "x.txt", ContentType: "text/plain"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	f.storage.AssertNumberOfCalls(t, "Upload", 1)
}

func TestUploadPhoto_Disabled(t *testing.T) {
	f := newListingFixture(false)
	_, err := f.uc.UploadPhoto(context.Background(), userPrincipal("u1", "l1"), "l1", PhotoUpload{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListListings_ClampsPage(t *testing.T) {
	f := newListingFixture(false)
	f.listings.On("List", mock.Anything, domain.ListingFilter{Category: "/bikes", Limit: maxListingPageSize}).
		Return([]*domain.Listing{}, nil)

	_, err := f.uc.List(context.Background(), userPrincipal("u1"), domain.ListingFilter{Category: "Bikes", Limit: 5000, Skip: -3})
	require.NoError(t, err)
	f.listings.AssertExpectations(t)
}

func TestDeleteListing_CascadeFailureKeepsResult(t *testing.T) {
	f := newListingFixture(false)
	listing := &domain.Listing{ID: "l1", PostedBy: "u1"}
	f.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	f.listings.On("Delete", mock.Anything, "l1").Return(nil)
	f.users.On("RemoveListing", mock.Anything, "u1", "l1").Return(nil)
	f.favorites.On("RemoveFromAll", mock.Anything, "l1").Return(int64(0), errors.New("mongo down"))

	p := userPrincipal("u1", "l1")
	got, err := f.uc.Delete(context.Background(), p, "l1")
	require.NoError(t, err, "the listing is already gone")
	assert.Equal(t, "l1", got.ID)
	assert.False(t, p.OwnsListing("l1"))
}
