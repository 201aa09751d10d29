package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// FavoriteRepository stores favorites as a key set on the user document.
// Each operation is one conditional update, so concurrent duplicates resolve
// to a single winner.
type FavoriteRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewFavoriteRepository(db *mongo.Database, log *logger.Logger) *FavoriteRepository {
	return &FavoriteRepository{
		collection: db.Collection(usersCollection),
		logger:     log.Named("FavoriteRepository"),
	}
}

func favoriteField(listingID string) string {
	return "favorites." + listingID
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, listingID string) error {
	oid, ok := objectID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}
	// Listing ids become document keys; only hex ids are safe there.
	if _, ok := objectID(listingID); !ok {
		return domain.ErrListingNotFound
	}

	filter := bson.M{"_id": oid, favoriteField(listingID): bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{favoriteField(listingID): true, "updatedAt": time.Now().UTC()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to add favorite", zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return r.missOrConflict(ctx, oid, domain.ErrAlreadyFavorited)
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	oid, ok := objectID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}
	if _, ok := objectID(listingID); !ok {
		return domain.ErrNotFavorited
	}

	filter := bson.M{"_id": oid, favoriteField(listingID): bson.M{"$exists": true}}
	update := bson.M{
		"$unset": bson.M{favoriteField(listingID): ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to remove favorite", zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return r.missOrConflict(ctx, oid, domain.ErrNotFavorited)
}

// RemoveFromAll drops listingID from every user's favorites.
func (r *FavoriteRepository) RemoveFromAll(ctx context.Context, listingID string) (int64, error) {
	if _, ok := objectID(listingID); !ok {
		return 0, nil
	}
	filter := bson.M{favoriteField(listingID): bson.M{"$exists": true}}
	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$unset": bson.M{favoriteField(listingID): ""}})
	if err != nil {
		r.logger.Error("Failed to remove listing from favorites", zap.String("listing_id", listingID), zap.Error(err))
		return 0, fmt.Errorf("db update many failed: %w", err)
	}
	return res.ModifiedCount, nil
}

// missOrConflict tells a missing user apart from a failed precondition after
// a conditional update matched nothing.
func (r *FavoriteRepository) missOrConflict(ctx context.Context, userOID primitive.ObjectID, conflict error) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": userOID})
	if err != nil {
		return fmt.Errorf("db count failed: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return conflict
}
