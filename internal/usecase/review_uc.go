package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ReviewUsecase implements the business logic for reviews.
type ReviewUsecase struct {
	reviews  domain.ReviewRepository
	users    domain.UserRepository
	listings domain.ListingRepository
	authz    Authorizer
	cascade  *Cascade
	events   EventPublisher
	logger   *logger.Logger
}

func NewReviewUsecase(reviews domain.ReviewRepository, users domain.UserRepository, listings domain.ListingRepository,
	authz Authorizer, cascade *Cascade, events EventPublisher, log *logger.Logger) *ReviewUsecase {
	return &ReviewUsecase{
		reviews:  reviews,
		users:    users,
		listings: listings,
		authz:    authz,
		cascade:  cascade,
		events:   events,
		logger:   log.Named("ReviewUsecase"),
	}
}

// CreateReviewInput holds the input parameters for creating a review.
type CreateReviewInput struct {
	ReviewedUser string
	ListingID    string
	Rating       int
	Message      string
	Choices      domain.ReviewChoices
}

// Create handles the creation of a new review by the principal.
func (uc *ReviewUsecase) Create(ctx context.Context, p *domain.Principal, in CreateReviewInput) (*domain.Review, error) {
	uc.logger.Info("Creating review",
		zap.String("reviewed_by", p.ID),
		zap.String("reviewed_user", in.ReviewedUser),
		zap.String("listing_id", in.ListingID),
		zap.Int("rating", in.Rating))

	if err := uc.authz.Authorize(p, access.ActionCreate, access.ResourceReview, &access.Target{OwnerID: p.ID}); err != nil {
		return nil, err
	}
	review, err := domain.NewReview(p.ID, in.ReviewedUser, in.ListingID, in.Rating, in.Message, in.Choices)
	if err != nil {
		return nil, err
	}

	exists, err := uc.listings.Exists(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrListingNotFound
	}
	if _, err := uc.users.FindByID(ctx, in.ReviewedUser); err != nil {
		return nil, err
	}

	if err := uc.reviews.Create(ctx, review); err != nil {
		uc.logger.Error("Failed to save review to repository", zap.Error(err))
		return nil, err
	}
	if err := uc.cascade.ReviewCreated(ctx, review); err != nil {
		return nil, err
	}

	eventData := map[string]interface{}{
		"review_id":     review.ID,
		"reviewed_by":   review.ReviewedBy,
		"reviewed_user": review.ReviewedUser,
		"listing_id":    review.ListingID,
		"rating":        review.Rating,
		"created_at":    review.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.events.Publish(ctx, SubjectReviewCreated, eventData); err != nil {
		uc.logger.Warn("Failed to publish review.created event", zap.Error(err), zap.String("review_id", review.ID))
	}

	uc.logger.Info("Review created successfully", zap.String("review_id", review.ID))
	return review, nil
}

// ListForUser returns the reviews received by userID.
func (uc *ReviewUsecase) ListForUser(ctx context.Context, p *domain.Principal, userID string) ([]*domain.Review, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceProfile, &access.Target{ID: userID}); err != nil {
		return nil, err
	}
	return uc.reviews.ListByReviewedUser(ctx, userID)
}

// ListForListing returns the reviews left on a listing.
func (uc *ReviewUsecase) ListForListing(ctx context.Context, p *domain.Principal, listingID string) ([]*domain.Review, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceListing, &access.Target{ID: listingID}); err != nil {
		return nil, err
	}
	return uc.reviews.ListByListing(ctx, listingID)
}
