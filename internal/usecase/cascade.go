package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Cascade keeps the references between users, listings and reviews in step
// after the primary write has committed.
type Cascade struct {
	users     domain.UserRepository
	listings  domain.ListingRepository
	favorites domain.FavoriteRepository
	recorder  CounterRecorder
	cache     ListingCache
	events    EventPublisher
	logger    *logger.Logger
}

// NewCascade builds the cascade. A nil recorder skips counter corrections.
func NewCascade(users domain.UserRepository, listings domain.ListingRepository, favorites domain.FavoriteRepository,
	recorder CounterRecorder, cache ListingCache, events EventPublisher, log *logger.Logger) *Cascade {
	return &Cascade{
		users:     users,
		listings:  listings,
		favorites: favorites,
		recorder:  recorder,
		cache:     cache,
		events:    events,
		logger:    log.Named("Cascade"),
	}
}

// ListingCreated records the new listing on its poster.
func (c *Cascade) ListingCreated(ctx context.Context, listing *domain.Listing) error {
	if err := c.users.AddListing(ctx, listing.PostedBy, listing.ID); err != nil {
		c.logger.Error("Failed to link listing to poster",
			zap.String("listing_id", listing.ID),
			zap.String("user_id", listing.PostedBy),
			zap.Error(err))
		return fmt.Errorf("link listing %s to user %s: %w", listing.ID, listing.PostedBy, err)
	}
	return nil
}

// ListingDeleted unlinks a deleted listing from its poster and from every
// favorite set, then evicts it from the cache.
func (c *Cascade) ListingDeleted(ctx context.Context, listing *domain.Listing) error {
	if err := c.users.RemoveListing(ctx, listing.PostedBy, listing.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.logger.Error("Failed to unlink listing from poster", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("unlink listing %s from user %s: %w", listing.ID, listing.PostedBy, err)
	}
	n, err := c.favorites.RemoveFromAll(ctx, listing.ID)
	if err != nil {
		c.logger.Error("Failed to remove listing from favorites", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("remove listing %s from favorites: %w", listing.ID, err)
	}
	if err := c.cache.Delete(ctx, listing.ID); err != nil {
		c.logger.Warn("Failed to evict listing from cache", zap.String("listing_id", listing.ID), zap.Error(err))
	}

	eventData := map[string]interface{}{
		"listing_id":  listing.ID,
		"posted_by":   listing.PostedBy,
		"unfavorited": n,
	}
	if err := c.events.Publish(ctx, SubjectListingDeleted, eventData); err != nil {
		c.logger.Warn("Failed to publish listing.deleted event", zap.Error(err), zap.String("listing_id", listing.ID))
	}
	c.logger.Info("Listing cascade completed", zap.String("listing_id", listing.ID), zap.Int64("unfavorited", n))
	return nil
}

// ReviewCreated records the review on the reviewed user.
func (c *Cascade) ReviewCreated(ctx context.Context, review *domain.Review) error {
	if err := c.users.AddReview(ctx, review.ReviewedUser, review.ID); err != nil {
		c.logger.Error("Failed to link review to user",
			zap.String("review_id", review.ID),
			zap.String("user_id", review.ReviewedUser),
			zap.Error(err))
		return fmt.Errorf("link review %s to user %s: %w", review.ID, review.ReviewedUser, err)
	}
	return nil
}

// UserDeleted takes back the deleted user's favorites from the listing
// counters and removes every listing the user posted.
func (c *Cascade) UserDeleted(ctx context.Context, user *domain.User) error {
	c.releaseFavorites(ctx, user)

	var errs []error
	for _, id := range user.Listings {
		listing, err := c.listings.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.listings.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, err)
			continue
		}
		if err := c.ListingDeleted(ctx, listing); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		c.logger.Error("User cascade incomplete", zap.String("user_id", user.ID), zap.Int("failures", len(errs)))
		return fmt.Errorf("delete listings of user %s: %w", user.ID, errors.Join(errs...))
	}
	return nil
}

func (c *Cascade) releaseFavorites(ctx context.Context, user *domain.User) {
	if c.recorder == nil {
		return
	}
	for _, listingID := range user.Favorites {
		if err := c.recorder.Increment(ctx, counter.Favorites, listingID, -1); err != nil {
			c.logger.Warn("Failed to release favorite of deleted user",
				zap.String("user_id", user.ID),
				zap.String("listing_id", listingID),
				zap.Error(err))
		}
	}
}
