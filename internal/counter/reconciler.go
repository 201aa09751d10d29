package counter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// LockKey guards RunAll so only one reconciler flushes at a time.
const LockKey = "counter-sync:lock"

// ErrLockHeld is returned by RunAll when another reconciler holds the lock.
var ErrLockHeld = errors.New("counter reconciliation already in progress")

var releaseLock = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Increment is one conditional update of a listing's durable counter.
// It applies only while the listing's stored mark still equals PrevMark, and
// moves the mark to Mark in the same write.
type Increment struct {
	ListingID string
	Delta     int64
	PrevMark  string
	Mark      string
}

// Sink is the durable side of the counters.
type Sink interface {
	// Marks returns the last applied bucket label per listing. Listings that
	// no longer exist are absent from the map; "" means nothing applied yet.
	Marks(ctx context.Context, c Counter, listingIDs []string) (map[string]string, error)
	// Apply performs the increments and returns the IDs of the listings that
	// were updated.
	Apply(ctx context.Context, c Counter, incs []Increment) ([]string, error)
}

// Result summarises one reconciliation run of a counter.
type Result struct {
	Counter         Counter
	BucketsScanned  int
	BucketsDeleted  int
	ListingsUpdated int
	Deltas          map[string]int64
}

type ReconcilerConfig struct {
	// SettleDelay keeps recent buckets out of a run while writers may still
	// target them.
	SettleDelay time.Duration
	LockTTL     time.Duration
	ScanCount   int64
}

// Reconciler flushes counter buckets from Redis into the sink.
type Reconciler struct {
	rdb     redis.UniversalClient
	sink    Sink
	cfg     ReconcilerConfig
	metrics *metrics.MetricsManager
	logger  *logger.Logger
	now     func() time.Time
}

func NewReconciler(rdb redis.UniversalClient, sink Sink, cfg ReconcilerConfig, m *metrics.MetricsManager, log *logger.Logger) *Reconciler {
	if cfg.ScanCount <= 0 {
		cfg.ScanCount = 100
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &Reconciler{rdb: rdb, sink: sink, cfg: cfg, metrics: m, logger: log.Named("CounterReconciler"), now: time.Now}
}

type bucket struct {
	key    string
	label  string
	deltas map[string]int64
}

// RunAll reconciles every counter under the distributed lock.
func (r *Reconciler) RunAll(ctx context.Context) ([]Result, error) {
	token := uuid.NewString()
	acquired, err := r.rdb.SetNX(ctx, LockKey, token, r.cfg.LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire reconcile lock: %w", err)
	}
	if !acquired {
		r.logger.Info("Reconcile lock held elsewhere, skipping run")
		return nil, ErrLockHeld
	}
	defer func() {
		if err := releaseLock.Run(context.WithoutCancel(ctx), r.rdb, []string{LockKey}, token).Err(); err != nil {
			r.logger.Warn("Failed to release reconcile lock", zap.Error(err))
		}
	}()

	results := make([]Result, 0, len(All))
	for _, c := range All {
		res, err := r.Run(ctx, c)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Run flushes the settled buckets of c.
func (r *Reconciler) Run(ctx context.Context, c Counter) (res Result, err error) {
	ctx, span := otel.Tracer("counter").Start(ctx, "Reconciler.Run")
	span.SetAttributes(attribute.String("counter", string(c)))
	start := time.Now()
	defer func() {
		r.metrics.ObserveReconcile(string(c), err, res.BucketsDeleted, res.ListingsUpdated, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Int("buckets_deleted", res.BucketsDeleted),
			attribute.Int("listings_updated", res.ListingsUpdated))
		span.End()
	}()

	res = Result{Counter: c, Deltas: map[string]int64{}}

	buckets, err := r.collect(ctx, c)
	if err != nil {
		return res, err
	}
	res.BucketsScanned = len(buckets)
	if len(buckets) == 0 {
		return res, nil
	}

	ids := listingIDs(buckets)
	marks, err := r.sink.Marks(ctx, c, ids)
	if err != nil {
		return res, fmt.Errorf("read %s marks: %w", c, err)
	}

	settled := make(map[string]bool, len(ids))
	var incs []Increment
	for _, id := range ids {
		mark, exists := marks[id]
		if !exists {
			// Deltas for deleted listings are dropped with their buckets.
			settled[id] = true
			continue
		}
		inc := Increment{ListingID: id, PrevMark: mark}
		for _, b := range buckets {
			delta, ok := b.deltas[id]
			if !ok || b.label <= mark {
				continue
			}
			inc.Delta += delta
			inc.Mark = b.label
		}
		if inc.Mark == "" {
			settled[id] = true
			continue
		}
		incs = append(incs, inc)
	}

	if len(incs) > 0 {
		applied, err := r.sink.Apply(ctx, c, incs)
		if err != nil {
			return res, fmt.Errorf("apply %s increments: %w", c, err)
		}
		byID := make(map[string]int64, len(incs))
		for _, inc := range incs {
			byID[inc.ListingID] = inc.Delta
		}
		for _, id := range applied {
			settled[id] = true
			res.Deltas[id] = byID[id]
		}
		res.ListingsUpdated = len(applied)
		if len(applied) < len(incs) {
			r.logger.Warn("Some listings were not updated, their buckets are kept",
				zap.String("counter", string(c)),
				zap.Int("expected", len(incs)),
				zap.Int("applied", len(applied)))
		}
	}

	var done []string
	for _, b := range buckets {
		if allSettled(b, settled) {
			done = append(done, b.key)
		}
	}
	if len(done) > 0 {
		if err := r.rdb.Del(ctx, done...).Err(); err != nil {
			// Marks already cover these buckets; the next run deletes them.
			r.logger.Warn("Failed to delete flushed buckets", zap.Strings("keys", done), zap.Error(err))
		} else {
			res.BucketsDeleted = len(done)
		}
	}

	r.logger.Info("Counter reconciled",
		zap.String("counter", string(c)),
		zap.Int("buckets_scanned", res.BucketsScanned),
		zap.Int("buckets_deleted", res.BucketsDeleted),
		zap.Int("listings_updated", res.ListingsUpdated))
	return res, nil
}

// collect returns the settled buckets of c in chronological order.
func (r *Reconciler) collect(ctx context.Context, c Counter) ([]bucket, error) {
	cutoff := r.now().UTC().Add(-r.cfg.SettleDelay).Truncate(time.Minute)

	var buckets []bucket
	iter := r.rdb.Scan(ctx, 0, string(c)+"_*", r.cfg.ScanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		label, at, ok := ParseBucketKey(c, key)
		if !ok {
			r.logger.Debug("Ignoring malformed bucket key", zap.String("key", key))
			continue
		}
		if !at.Before(cutoff) {
			continue
		}
		buckets = append(buckets, bucket{key: key, label: label})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s buckets: %w", c, err)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].label < buckets[j].label })

	for i := range buckets {
		raw, err := r.rdb.HGetAll(ctx, buckets[i].key).Result()
		if err != nil {
			return nil, fmt.Errorf("read bucket %s: %w", buckets[i].key, err)
		}
		deltas := make(map[string]int64, len(raw))
		for id, v := range raw {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				r.logger.Warn("Ignoring non-numeric bucket field",
					zap.String("key", buckets[i].key), zap.String("listing_id", id), zap.String("value", v))
				continue
			}
			deltas[id] = n
		}
		buckets[i].deltas = deltas
	}
	return buckets, nil
}

func listingIDs(buckets []bucket) []string {
	seen := map[string]struct{}{}
	for _, b := range buckets {
		for id := range b.deltas {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func allSettled(b bucket, settled map[string]bool) bool {
	for id := range b.deltas {
		if !settled[id] {
			return false
		}
	}
	return true
}
