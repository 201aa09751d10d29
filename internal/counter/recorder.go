package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Recorder writes counter deltas into the bucket of the current minute.
type Recorder struct {
	rdb     redis.UniversalClient
	metrics *metrics.MetricsManager
	logger  *logger.Logger
	now     func() time.Time
}

func NewRecorder(rdb redis.UniversalClient, m *metrics.MetricsManager, log *logger.Logger) *Recorder {
	return &Recorder{rdb: rdb, metrics: m, logger: log.Named("CounterRecorder"), now: time.Now}
}

// Increment adds delta to listingID in the current bucket of c.
func (r *Recorder) Increment(ctx context.Context, c Counter, listingID string, delta int64) error {
	key := BucketKey(c, r.now())
	if err := r.rdb.HIncrBy(ctx, key, listingID, delta).Err(); err != nil {
		r.logger.Error("Failed to record counter delta",
			zap.String("key", key),
			zap.String("listing_id", listingID),
			zap.Int64("delta", delta),
			zap.Error(err))
		return fmt.Errorf("record %s delta for listing %s: %w", c, listingID, err)
	}
	r.metrics.ObserveCounterDelta(string(c))
	return nil
}
