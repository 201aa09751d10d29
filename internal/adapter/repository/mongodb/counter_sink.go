package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CounterSink applies reconciled counter deltas to listing documents.
// Every listing carries counterMarks.<counter>, the newest bucket label
// already applied, and each increment is conditional on it.
type CounterSink struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

var _ counter.Sink = (*CounterSink)(nil)

func NewCounterSink(db *mongo.Database, log *logger.Logger) *CounterSink {
	return &CounterSink{
		collection: db.Collection(listingsCollection),
		logger:     log.Named("CounterSink"),
	}
}

func markField(c counter.Counter) string {
	return "counterMarks." + string(c)
}

func (s *CounterSink) Marks(ctx context.Context, c counter.Counter, listingIDs []string) (map[string]string, error) {
	oids := make([]primitive.ObjectID, 0, len(listingIDs))
	for _, id := range listingIDs {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}
	marks := make(map[string]string, len(oids))
	if len(oids) == 0 {
		return marks, nil
	}

	opts := options.Find().SetProjection(bson.M{markField(c): 1})
	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("db find marks failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID           primitive.ObjectID `bson:"_id"`
		CounterMarks map[string]string  `bson:"counterMarks"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	for _, d := range docs {
		marks[d.ID.Hex()] = d.CounterMarks[string(c)]
	}
	return marks, nil
}

// Apply runs all increments in one unordered bulk write. The listings reported
// as applied are those whose mark reached the increment's mark afterwards,
// which also covers a concurrent run that got there first.
func (s *CounterSink) Apply(ctx context.Context, c counter.Counter, incs []counter.Increment) ([]string, error) {
	models := make([]mongo.WriteModel, 0, len(incs))
	ids := make([]string, 0, len(incs))
	for _, inc := range incs {
		oid, ok := objectID(inc.ListingID)
		if !ok {
			continue
		}
		filter := bson.M{"_id": oid, markField(c): inc.PrevMark}
		if inc.PrevMark == "" {
			filter = bson.M{"_id": oid, "$or": bson.A{
				bson.M{markField(c): bson.M{"$exists": false}},
				bson.M{markField(c): ""},
			}}
		}
		update := bson.M{
			"$inc": bson.M{string(c): inc.Delta},
			"$set": bson.M{markField(c): inc.Mark},
		}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update))
		ids = append(ids, inc.ListingID)
	}
	if len(models) == 0 {
		return nil, nil
	}

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if !errors.As(err, &bulkErr) {
			return nil, fmt.Errorf("db bulk write failed: %w", err)
		}
		s.logger.Warn("Counter bulk write partially failed",
			zap.String("counter", string(c)), zap.Int("write_errors", len(bulkErr.WriteErrors)), zap.Error(err))
	} else {
		s.logger.Debug("Counter bulk write done",
			zap.String("counter", string(c)), zap.Int64("matched", res.MatchedCount), zap.Int64("modified", res.ModifiedCount))
	}

	marks, err := s.Marks(ctx, c, ids)
	if err != nil {
		return nil, err
	}
	applied := make([]string, 0, len(incs))
	for _, inc := range incs {
		if mark, ok := marks[inc.ListingID]; ok && mark >= inc.Mark {
			applied = append(applied, inc.ListingID)
		}
	}
	return applied, nil
}
