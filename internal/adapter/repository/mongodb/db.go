package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	usersCollection      = "users"
	listingsCollection   = "listings"
	categoriesCollection = "categories"
	reviewsCollection    = "reviews"
	reportsCollection    = "reports"
)

// NewMongoDBConnection connects to MongoDB and pings the primary.
func NewMongoDBConnection(cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	if cfg.MongoMaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.MongoMaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. Failures are
// logged and do not stop startup; the indexes may already exist.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logger.Logger) {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "tokens", Value: 1}}},
		},
		listingsCollection: {
			{Keys: bson.D{{Key: "postedBy", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "parent", Value: 1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "reviewedUser", Value: 1}}},
			{Keys: bson.D{{Key: "listingId", Value: 1}}},
		},
		reportsCollection: {
			{Keys: bson.D{{Key: "reportedListing", Value: 1}}},
			{Keys: bson.D{{Key: "reportedUser", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			log.Error("Failed to create indexes", zap.String("collection", name), zap.Error(err))
			continue
		}
		log.Debug("Ensured indexes", zap.String("collection", name))
	}
}
