package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UserRepository implements domain.UserRepository using MongoDB.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(usersCollection),
		logger:     log.Named("UserRepository"),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := fromDomainUser(user)
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		r.logger.Error("Failed to insert user", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	if oid, ok := objectIDOf(res.InsertedID); ok {
		user.ID = oid
	}
	r.logger.Info("User created", zap.String("user_id", user.ID))
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("Failed to find user", zap.Any("filter", redactFilter(filter)), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "tokens": token})
}

func (r *UserRepository) List(ctx context.Context, skip, limit int64) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	users := make([]*domain.User, len(docs))
	for i, d := range docs {
		users[i] = d.toDomain()
	}
	return users, nil
}

// Update applies the non-nil fields of update. Password must already be hashed.
func (r *UserRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.FirstName != nil {
		set["firstName"] = *update.FirstName
	}
	if update.LastName != nil {
		set["lastName"] = *update.LastName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Password != nil {
		set["password"] = *update.Password
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}

	var doc userDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrEmailTaken
	case err != nil:
		r.logger.Error("Failed to update user", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("db update failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	r.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

func (r *UserRepository) AddToken(ctx context.Context, id, token string) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"tokens": token}})
}

func (r *UserRepository) RemoveToken(ctx context.Context, id, token string) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"tokens": token}})
}

func (r *UserRepository) ClearTokens(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"tokens": []string{}}})
}

func (r *UserRepository) AddListing(ctx context.Context, userID, listingID string) error {
	return r.updateByID(ctx, userID, bson.M{"$addToSet": bson.M{"listings": listingID}})
}

func (r *UserRepository) RemoveListing(ctx context.Context, userID, listingID string) error {
	return r.updateByID(ctx, userID, bson.M{"$pull": bson.M{"listings": listingID}})
}

func (r *UserRepository) AddReview(ctx context.Context, userID, reviewID string) error {
	return r.updateByID(ctx, userID, bson.M{"$addToSet": bson.M{"reviews": reviewID}})
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		r.logger.Error("Failed to update user", zap.String("user_id", id), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// redactFilter keeps session tokens out of the logs.
func redactFilter(filter bson.M) bson.M {
	if _, ok := filter["tokens"]; !ok {
		return filter
	}
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}
	out["tokens"] = "[redacted]"
	return out
}
