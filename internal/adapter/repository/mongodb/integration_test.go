//go:build integration

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testDatabase = "test_marketplace_db"

var testDB *mongo.Database

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "6.0",
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=root",
			"MONGO_INITDB_ROOT_PASSWORD=password",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	uri := fmt.Sprintf("mongodb://root:password@%s/%s?authSource=admin", resource.GetHostPort("27017/tcp"), testDatabase)

	var client *mongo.Client
	if err := pool.Retry(func() error {
		var errRetry error
		client, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if errRetry != nil {
			return errRetry
		}
		return client.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}

	testDB = client.Database(testDatabase)
	EnsureIndexes(context.Background(), testDB, logger.NewNop())

	code := m.Run()

	_ = client.Disconnect(context.Background())
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func clearCollections(t *testing.T) {
	t.Helper()
	for _, name := range []string{usersCollection, listingsCollection, categoriesCollection, reviewsCollection, reportsCollection} {
		_, err := testDB.Collection(name).DeleteMany(context.Background(), bson.M{})
		require.NoError(t, err)
	}
}

func seedUserAndListing(t *testing.T) (*domain.User, *domain.Listing) {
	t.Helper()
	ctx := context.Background()
	users := NewUserRepository(testDB, logger.NewNop())
	listings := NewListingRepository(testDB, logger.NewNop())

	u := domain.NewUser("jane", "doe", "jane@example.com", "hash")
	require.NoError(t, users.Create(ctx, u))
	l := domain.NewListing(u.ID, "Road bike", "Barely used", "/bikes/road", 300, "EUR")
	require.NoError(t, listings.Create(ctx, l))
	return u, l
}

func TestUserRepository_TokensAndEmail(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB, logger.NewNop())

	u, _ := seedUserAndListing(t)
	require.NoError(t, repo.AddToken(ctx, u.ID, "t1"))
	require.NoError(t, repo.AddToken(ctx, u.ID, "t2"))

	got, err := repo.FindByIDAndToken(ctx, u.ID, "t1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)

	require.NoError(t, repo.ClearTokens(ctx, u.ID))
	_, err = repo.FindByIDAndToken(ctx, u.ID, "t2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dup := domain.NewUser("john", "doe", "JANE@example.com", "hash")
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrConflict)
}

func TestFavoriteRepository_ConcurrentAdd(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo := NewFavoriteRepository(testDB, logger.NewNop())
	u, l := seedUserAndListing(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Add(ctx, u.ID, l.ID)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyFavorited):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	require.NoError(t, repo.Remove(ctx, u.ID, l.ID))
	assert.ErrorIs(t, repo.Remove(ctx, u.ID, l.ID), domain.ErrNotFavorited)
	assert.ErrorIs(t, repo.Add(ctx, "64b000000000000000000000", l.ID), domain.ErrUserNotFound)
}

func TestCounterSink_ConditionalApply(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	sink := NewCounterSink(testDB, logger.NewNop())
	listings := NewListingRepository(testDB, logger.NewNop())
	_, l := seedUserAndListing(t)

	marks, err := sink.Marks(ctx, counter.Favorites, []string{l.ID, "64b000000000000000000000"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{l.ID: ""}, marks)

	inc := counter.Increment{ListingID: l.ID, Delta: 2, PrevMark: "", Mark: "2024-01-01T00:01"}
	applied, err := sink.Apply(ctx, counter.Favorites, []counter.Increment{inc})
	require.NoError(t, err)
	assert.Equal(t, []string{l.ID}, applied)

	// Replaying the same increment is a no-op for the counter.
	_, err = sink.Apply(ctx, counter.Favorites, []counter.Increment{inc})
	require.NoError(t, err)

	got, err := listings.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Favorites)
	assert.Equal(t, "2024-01-01T00:01", got.CounterMarks[string(counter.Favorites)])
}

func TestListingRepository_AddPhoto(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo := NewListingRepository(testDB, logger.NewNop())
	_, l := seedUserAndListing(t)

	got, err := repo.AddPhoto(ctx, l.ID, "http://cdn/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/a.jpg", got.Photos.Cover)

	got, err = repo.AddPhoto(ctx, l.ID, "http://cdn/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/a.jpg", got.Photos.Cover)
	assert.Equal(t, []string{"http://cdn/a.jpg", "http://cdn/b.jpg"}, got.Photos.Photos)
}

func TestReportRepository_ListFilters(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo := NewReportRepository(testDB, logger.NewNop())

	old, err := domain.NewReport("u1", "l1", "", 10, "")
	require.NoError(t, err)
	old.CreatedAt = time.Now().UTC().Add(-10 * 24 * time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	recent, err := domain.NewReport("u1", "", "u2", 14, "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, recent))

	listingReports, err := repo.List(ctx, domain.ReportFilter{Target: domain.ReportTargetListing})
	require.NoError(t, err)
	require.Len(t, listingReports, 1)
	assert.Equal(t, "l1", listingReports[0].ReportedListing)

	lastWeek, err := repo.List(ctx, domain.ReportFilter{PostedWithin: domain.PostedWithinDuration("7d")})
	require.NoError(t, err)
	require.Len(t, lastWeek, 1)
	assert.Equal(t, "u2", lastWeek[0].ReportedUser)
}
