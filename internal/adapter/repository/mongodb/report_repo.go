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

// reportSortFields maps accepted sortBy values to document fields.
var reportSortFields = map[string]string{
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
	"subject":   "subject",
}

type ReportRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	now        func() time.Time
}

func NewReportRepository(db *mongo.Database, log *logger.Logger) *ReportRepository {
	return &ReportRepository{
		collection: db.Collection(reportsCollection),
		logger:     log.Named("ReportRepository"),
		now:        time.Now,
	}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	doc := reportDocument{
		Reporter:        report.Reporter,
		ReportedListing: report.ReportedListing,
		ReportedUser:    report.ReportedUser,
		Subject:         report.Subject,
		Message:         report.Message,
		CreatedAt:       report.CreatedAt,
		UpdatedAt:       report.UpdatedAt,
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Error("Failed to insert report", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	if id, ok := objectIDOf(res.InsertedID); ok {
		report.ID = id
	}
	r.logger.Info("Report created", zap.String("report_id", report.ID), zap.String("target", string(report.Target())))
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	var doc reportDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		r.logger.Error("Failed to find report", zap.String("report_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	query := bson.M{}
	switch filter.Target {
	case domain.ReportTargetListing:
		query["reportedListing"] = bson.M{"$exists": true, "$ne": ""}
	case domain.ReportTargetUser:
		query["reportedUser"] = bson.M{"$exists": true, "$ne": ""}
	}
	if filter.Subject != nil {
		query["subject"] = *filter.Subject
	}
	if filter.PostedWithin > 0 {
		query["createdAt"] = bson.M{"$gte": r.now().UTC().Add(-filter.PostedWithin)}
	}

	opts := options.Find()
	if field, ok := reportSortFields[filter.SortBy]; ok {
		order := 1
		if filter.Descending {
			order = -1
		}
		opts.SetSort(bson.D{{Key: field, Value: order}})
	}
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("Failed to list reports", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make([]*domain.Report, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *ReportRepository) Update(ctx context.Context, id string, update domain.ReportUpdate) (*domain.Report, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	set := bson.M{"updatedAt": r.now().UTC()}
	if update.Subject != nil {
		set["subject"] = *update.Subject
	}
	if update.Message != nil {
		set["message"] = *update.Message
	}

	var doc reportDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		r.logger.Error("Failed to update report", zap.String("report_id", id), zap.Error(err))
		return nil, fmt.Errorf("db update failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrReportNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete report", zap.String("report_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}
