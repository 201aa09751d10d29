package mongodb

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ReviewRepository implements domain.ReviewRepository using MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewReviewRepository(db *mongo.Database, log *logger.Logger) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection(reviewsCollection),
		logger:     log.Named("ReviewRepository"),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.logger.Info("Creating review", zap.String("listing_id", review.ListingID), zap.String("reviewed_user", review.ReviewedUser))
	res, err := r.collection.InsertOne(ctx, fromDomainReview(review))
	if err != nil {
		r.logger.Error("Failed to insert review", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	if id, ok := objectIDOf(res.InsertedID); ok {
		review.ID = id
	}
	return nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{"listingId": listingID})
}

func (r *ReviewRepository) ListByReviewedUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{"reviewedUser": userID})
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find reviews", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make([]*domain.Review, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}
