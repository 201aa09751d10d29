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

// ErrCategoryExists is returned when a category with the same path exists.
var ErrCategoryExists = &domain.Error{Kind: domain.ErrConflict, Message: "The category already exists."}

type CategoryRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCategoryRepository(db *mongo.Database, log *logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection(categoriesCollection),
		logger:     log.Named("CategoryRepository"),
	}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	doc := categoryDocument{
		Name:      c.Name,
		Parent:    c.Parent,
		Path:      c.Path,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCategoryExists
		}
		r.logger.Error("Failed to insert category", zap.String("path", c.Path), zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	if id, ok := objectIDOf(res.InsertedID); ok {
		c.ID = id
	}
	return nil
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M) (*domain.Category, error) {
	var doc categoryDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCategoryNotFound
		}
		r.logger.Error("Failed to find category", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *CategoryRepository) FindByPath(ctx context.Context, path string) (*domain.Category, error) {
	return r.findOne(ctx, bson.M{"category": path})
}

func (r *CategoryRepository) ListByParent(ctx context.Context, parent string) ([]*domain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"parent": parent}, opts)
	if err != nil {
		r.logger.Error("Failed to list categories", zap.String("parent", parent), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make([]*domain.Category, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Update stores the name, parent and path of c.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	oid, ok := objectID(c.ID)
	if !ok {
		return domain.ErrCategoryNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      c.Name,
		"parent":    c.Parent,
		"category":  c.Path,
		"updatedAt": c.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCategoryExists
		}
		r.logger.Error("Failed to update category", zap.String("category_id", c.ID), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrCategoryNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete category", zap.String("category_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
