package usecase

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// FavoriteUsecase toggles favorites. The relation write is a single
// conditional update, so concurrent toggles of the same pair yield exactly
// one success and exactly one counter delta.
type FavoriteUsecase struct {
	favorites domain.FavoriteRepository
	listings  domain.ListingRepository
	users     domain.UserRepository
	authz     Authorizer
	recorder  CounterRecorder
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewFavoriteUsecase(favorites domain.FavoriteRepository, listings domain.ListingRepository, users domain.UserRepository,
	authz Authorizer, recorder CounterRecorder, m *metrics.MetricsManager, log *logger.Logger) *FavoriteUsecase {
	return &FavoriteUsecase{
		favorites: favorites,
		listings:  listings,
		users:     users,
		authz:     authz,
		recorder:  recorder,
		metrics:   m,
		logger:    log.Named("FavoriteUsecase"),
	}
}

// Favorite adds listingID to the principal's favorites and returns the
// updated user.
func (uc *FavoriteUsecase) Favorite(ctx context.Context, p *domain.Principal, listingID string) (*domain.User, error) {
	if err := uc.authz.Authorize(p, access.ActionCreate, access.ResourceFavorites, &access.Target{ID: listingID, OwnerID: p.ID}); err != nil {
		return nil, err
	}
	exists, err := uc.listings.Exists(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrListingNotFound
	}

	if err := uc.favorites.Add(ctx, p.ID, listingID); err != nil {
		uc.metrics.ObserveFavoriteToggle("favorite", outcome(err))
		return nil, err
	}
	if err := uc.recorder.Increment(ctx, counter.Favorites, listingID, 1); err != nil {
		if rbErr := uc.favorites.Remove(context.WithoutCancel(ctx), p.ID, listingID); rbErr != nil {
			uc.logger.Error("Failed to roll back favorite after counter failure",
				zap.String("user_id", p.ID), zap.String("listing_id", listingID), zap.Error(rbErr))
		}
		uc.metrics.ObserveFavoriteToggle("favorite", "error")
		return nil, err
	}
	uc.metrics.ObserveFavoriteToggle("favorite", "ok")
	uc.logger.Info("Listing favorited", zap.String("user_id", p.ID), zap.String("listing_id", listingID))

	return uc.users.FindByID(ctx, p.ID)
}

// Unfavorite removes listingID from ownerID's favorites. Users may only
// touch their own set; admins may touch any.
func (uc *FavoriteUsecase) Unfavorite(ctx context.Context, p *domain.Principal, ownerID, listingID string) (*domain.User, error) {
	if err := uc.authz.Authorize(p, access.ActionDelete, access.ResourceFavorites, &access.Target{ID: listingID, OwnerID: ownerID}); err != nil {
		return nil, err
	}

	if err := uc.favorites.Remove(ctx, ownerID, listingID); err != nil {
		uc.metrics.ObserveFavoriteToggle("unfavorite", outcome(err))
		return nil, err
	}
	if err := uc.recorder.Increment(ctx, counter.Favorites, listingID, -1); err != nil {
		if rbErr := uc.favorites.Add(context.WithoutCancel(ctx), ownerID, listingID); rbErr != nil {
			uc.logger.Error("Failed to roll back unfavorite after counter failure",
				zap.String("user_id", ownerID), zap.String("listing_id", listingID), zap.Error(rbErr))
		}
		uc.metrics.ObserveFavoriteToggle("unfavorite", "error")
		return nil, err
	}
	uc.metrics.ObserveFavoriteToggle("unfavorite", "ok")
	uc.logger.Info("Listing unfavorited",
		zap.String("user_id", ownerID), zap.String("listing_id", listingID), zap.String("by", p.ID))

	return uc.users.FindByID(ctx, ownerID)
}

// List returns the listings in userID's favorites.
func (uc *FavoriteUsecase) List(ctx context.Context, p *domain.Principal, userID string) ([]*domain.Listing, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceFavorites, &access.Target{OwnerID: userID}); err != nil {
		return nil, err
	}
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Favorites) == 0 {
		return []*domain.Listing{}, nil
	}
	return uc.listings.List(ctx, domain.ListingFilter{IDs: user.Favorites})
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
