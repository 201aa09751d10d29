package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ListingRepository implements domain.ListingRepository using MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingsCollection),
		logger:     log.Named("ListingRepository"),
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	r.logger.Debug("Creating listing", zap.String("posted_by", listing.PostedBy), zap.String("title", listing.Title))
	res, err := r.collection.InsertOne(ctx, fromDomainListing(listing))
	if err != nil {
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	if id, ok := objectIDOf(res.InsertedID); ok {
		listing.ID = id
	}
	r.logger.Info("Listing created", zap.String("listing_id", listing.ID))
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("db count failed: %w", err)
	}
	return n > 0, nil
}

// List returns listings newest first. A category filter also matches its
// subcategories.
func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	query := bson.M{}
	if filter.IDs != nil {
		oids := make([]primitive.ObjectID, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			if oid, ok := objectID(id); ok {
				oids = append(oids, oid)
			}
		}
		query["_id"] = bson.M{"$in": oids}
	}
	if filter.Category != "" {
		query["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.Category) + "(/|$)", Options: "i"}
	}
	if filter.PostedBy != "" {
		query["postedBy"] = filter.PostedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("Failed to list listings", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	listings := make([]*domain.Listing, len(docs))
	for i, d := range docs {
		listings[i] = d.toDomain()
	}
	return listings, nil
}

// Update applies the non-nil fields of update. Counters are never touched here.
func (r *ListingRepository) Update(ctx context.Context, id string, update domain.ListingUpdate) (*domain.Listing, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Currency != nil {
		set["currency"] = *update.Currency
	}
	if update.Photos != nil {
		set["photos"] = photosDocument{Cover: update.Photos.Cover, Photos: emptyIfNil(update.Photos.Photos)}
	}
	if update.Condition != nil {
		set["condition"] = string(*update.Condition)
	}
	if update.Location != nil {
		set["location"] = fromDomainLocation(update.Location)
	}
	if update.IsSold != nil {
		set["isSold"] = *update.IsSold
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"_id": oid}, bson.M{"$set": set})
}

// AddPhoto appends url to the gallery and makes it the cover when there is none.
func (r *ListingRepository) AddPhoto(ctx context.Context, id, url string) (*domain.Listing, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "photos.photos", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$photos.photos", bson.A{}}}},
				bson.A{url},
			}}}},
			{Key: "photos.cover", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$photos.cover", ""}}}, bson.A{""}}}},
				url,
				"$photos.cover",
			}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"_id": oid}, pipeline)
}

func (r *ListingRepository) findOneAndUpdate(ctx context.Context, id string, filter, update interface{}) (*domain.Listing, error) {
	var doc listingDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to update listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("db update failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrListingNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	r.logger.Info("Listing deleted", zap.String("listing_id", id))
	return nil
}
