package counter

import (
	"strings"
	"time"
)

// Counter names a listing counter kept in Redis buckets.
type Counter string

const (
	Favorites Counter = "favorites"
	Views     Counter = "views"
)

// All is the order in which counters are reconciled.
var All = []Counter{Favorites, Views}

// BucketLayout is the UTC minute a bucket covers. Labels in this layout sort
// chronologically as plain strings.
const BucketLayout = "2006-01-02T15:04"

// BucketLabel returns the label of the bucket covering t.
func BucketLabel(t time.Time) string {
	return t.UTC().Format(BucketLayout)
}

// BucketKey returns the Redis key of the bucket of c covering t,
// e.g. "favorites_2024-01-01T00:00".
func BucketKey(c Counter, t time.Time) string {
	return string(c) + "_" + BucketLabel(t)
}

// ParseBucketKey extracts the label and minute of a bucket key of c.
// ok is false for keys that are not buckets of c.
func ParseBucketKey(c Counter, key string) (label string, at time.Time, ok bool) {
	label, found := strings.CutPrefix(key, string(c)+"_")
	if !found {
		return "", time.Time{}, false
	}
	at, err := time.ParseInLocation(BucketLayout, label, time.UTC)
	if err != nil {
		return "", time.Time{}, false
	}
	return label, at, true
}
