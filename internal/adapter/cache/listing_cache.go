package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const listingKeyPrefix = "listing:"

// ListingCache is a read-through cache of listing documents.
type ListingCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewListingCache(client redis.UniversalClient, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

// Get returns nil, nil on a cache miss.
func (c *ListingCache) Get(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, listingKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get listing %s: %w", id, err)
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("cache decode listing %s: %w", id, err)
	}
	return &listing, nil
}

func (c *ListingCache) Set(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("cache encode listing %s: %w", listing.ID, err)
	}
	return c.client.Set(ctx, listingKeyPrefix+listing.ID, data, c.ttl).Err()
}

func (c *ListingCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, listingKeyPrefix+id).Err()
}
