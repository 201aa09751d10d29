package usecase

import (
	"context"
	"io"
	"sync"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) user(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return m.user(m.Called(ctx, id))
}
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.user(m.Called(ctx, email))
}
func (m *MockUserRepository) FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error) {
	return m.user(m.Called(ctx, id, token))
}
func (m *MockUserRepository) List(ctx context.Context, skip, limit int64) ([]*domain.User, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}
func (m *MockUserRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	return m.user(m.Called(ctx, id, update))
}
func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockUserRepository) AddToken(ctx context.Context, id, token string) error {
	return m.Called(ctx, id, token).Error(0)
}
func (m *MockUserRepository) RemoveToken(ctx context.Context, id, token string) error {
	return m.Called(ctx, id, token).Error(0)
}
func (m *MockUserRepository) ClearTokens(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockUserRepository) AddListing(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}
func (m *MockUserRepository) RemoveListing(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}
func (m *MockUserRepository) AddReview(ctx context.Context, userID, reviewID string) error {
	return m.Called(ctx, userID, reviewID).Error(0)
}

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) listing(args mock.Arguments) (*domain.Listing, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	return m.Called(ctx, listing).Error(0)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	return m.listing(m.Called(ctx, id))
}
func (m *MockListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) Update(ctx context.Context, id string, update domain.ListingUpdate) (*domain.Listing, error) {
	return m.listing(m.Called(ctx, id, update))
}
func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockListingRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockListingRepository) AddPhoto(ctx context.Context, id, url string) (*domain.Listing, error) {
	return m.listing(m.Called(ctx, id, url))
}

type MockFavoriteRepository struct{ mock.Mock }

func (m *MockFavoriteRepository) Add(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}
func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}
func (m *MockFavoriteRepository) RemoveFromAll(ctx context.Context, listingID string) (int64, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) category(args mock.Arguments) (*domain.Category, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *MockCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	return m.category(m.Called(ctx, id))
}
func (m *MockCategoryRepository) FindByPath(ctx context.Context, path string) (*domain.Category, error) {
	return m.category(m.Called(ctx, path))
}
func (m *MockCategoryRepository) ListByParent(ctx context.Context, parent string) ([]*domain.Category, error) {
	args := m.Called(ctx, parent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}
func (m *MockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) Create(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockReviewRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.Review, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]*domain.Review), args.Error(1)
}
func (m *MockReviewRepository) ListByReviewedUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.Review), args.Error(1)
}

type MockReportRepository struct{ mock.Mock }

func (m *MockReportRepository) report(args mock.Arguments) (*domain.Report, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportRepository) Create(ctx context.Context, r *domain.Report) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	return m.report(m.Called(ctx, id))
}
func (m *MockReportRepository) List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Report), args.Error(1)
}
func (m *MockReportRepository) Update(ctx context.Context, id string, update domain.ReportUpdate) (*domain.Report, error) {
	return m.report(m.Called(ctx, id, update))
}
func (m *MockReportRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return m.Called(ctx, subject, data).Error(0)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) Increment(ctx context.Context, c counter.Counter, listingID string, delta int64) error {
	return m.Called(ctx, c, listingID, delta).Error(0)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockCache) Set(ctx context.Context, listing *domain.Listing) error {
	return m.Called(ctx, listing).Error(0)
}
func (m *MockCache) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) Upload(ctx context.Context, listingID, fileName, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, listingID, fileName, contentType, body, size)
	return args.String(0), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) ListingCreated(ctx context.Context, toEmail, firstName, listingTitle string) error {
	return m.Called(ctx, toEmail, firstName, listingTitle).Error(0)
}

// memoryFavorites is a FavoriteRepository with the same conditional-write
// semantics as the MongoDB implementation.
type memoryFavorites struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

func newMemoryFavorites() *memoryFavorites {
	return &memoryFavorites{sets: make(map[string]map[string]struct{})}
}

func (f *memoryFavorites) Add(_ context.Context, userID, listingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[userID]
	if !ok {
		set = make(map[string]struct{})
		f.sets[userID] = set
	}
	if _, ok := set[listingID]; ok {
		return domain.ErrAlreadyFavorited
	}
	set[listingID] = struct{}{}
	return nil
}

func (f *memoryFavorites) Remove(_ context.Context, userID, listingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sets[userID][listingID]; !ok {
		return domain.ErrNotFavorited
	}
	delete(f.sets[userID], listingID)
	return nil
}

func (f *memoryFavorites) RemoveFromAll(_ context.Context, listingID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, set := range f.sets {
		if _, ok := set[listingID]; ok {
			delete(set, listingID)
			n++
		}
	}
	return n, nil
}

// memoryRecorder sums deltas per counter and listing.
type memoryRecorder struct {
	mu     sync.Mutex
	totals map[counter.Counter]map[string]int64
	calls  int
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{totals: make(map[counter.Counter]map[string]int64)}
}

func (r *memoryRecorder) Increment(_ context.Context, c counter.Counter, listingID string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.totals[c] == nil {
		r.totals[c] = make(map[string]int64)
	}
	r.totals[c][listingID] += delta
	r.calls++
	return nil
}

func newEngine() *access.Engine {
	return access.NewEngine(access.DefaultGrants(), logger.NewNop())
}

func userPrincipal(id string, listings ...string) *domain.Principal {
	return domain.NewPrincipal(&domain.User{ID: id, Role: domain.RoleUser, Listings: listings}, "tok-"+id)
}

func adminPrincipal(id string) *domain.Principal {
	return domain.NewPrincipal(&domain.User{ID: id, Role: domain.RoleAdmin}, "tok-"+id)
}
