package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

const maxListingPageSize = 100

// CategoryResolver is satisfied by *CategoryUsecase.
type CategoryResolver interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// ListingUsecase implements listing CRUD, photo uploads and view counting.
type ListingUsecase struct {
	listings   domain.ListingRepository
	users      domain.UserRepository
	categories CategoryResolver
	authz      Authorizer
	recorder   CounterRecorder
	cache      ListingCache
	storage    PhotoStorage
	notifier   ListingNotifier
	events     EventPublisher
	cascade    *Cascade
	logger     *logger.Logger
}

// ListingDeps groups the collaborators of ListingUsecase. Storage may be nil,
// which disables photo uploads.
type ListingDeps struct {
	Listings   domain.ListingRepository
	Users      domain.UserRepository
	Categories CategoryResolver
	Authz      Authorizer
	Recorder   CounterRecorder
	Cache      ListingCache
	Storage    PhotoStorage
	Notifier   ListingNotifier
	Events     EventPublisher
	Cascade    *Cascade
}

func NewListingUsecase(deps ListingDeps, log *logger.Logger) *ListingUsecase {
	uc := &ListingUsecase{
		listings:   deps.Listings,
		users:      deps.Users,
		categories: deps.Categories,
		authz:      deps.Authz,
		recorder:   deps.Recorder,
		cache:      deps.Cache,
		storage:    deps.Storage,
		notifier:   deps.Notifier,
		events:     deps.Events,
		cascade:    deps.Cascade,
		logger:     log.Named("ListingUsecase"),
	}
	if uc.cache == nil {
		uc.cache = NopCache{}
	}
	if uc.notifier == nil {
		uc.notifier = NopNotifier{}
	}
	if uc.events == nil {
		uc.events = NopPublisher{}
	}
	return uc
}

type CreateListingInput struct {
	Title       string
	Description string
	Category    string
	Price       float64
	Currency    string
	Photos      domain.Photos
	Condition   domain.Condition
	Location    *domain.Location
}

// Create publishes a new listing for the principal.
func (uc *ListingUsecase) Create(ctx context.Context, p *domain.Principal, in CreateListingInput) (*domain.Listing, error) {
	if err := uc.authz.Authorize(p, access.ActionCreate, access.ResourceListing, &access.Target{OwnerID: p.ID}); err != nil {
		return nil, err
	}
	if in.Condition != "" && !in.Condition.IsValid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "Invalid condition.")
	}
	category := normalizePath(in.Category)
	if err := uc.checkCategory(ctx, category); err != nil {
		return nil, err
	}

	listing := domain.NewListing(p.ID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Description), category,
		in.Price, strings.ToUpper(in.Currency))
	listing.Photos = in.Photos
	if listing.Photos.Cover == "" && len(listing.Photos.Photos) > 0 {
		listing.Photos.Cover = listing.Photos.Photos[0]
	}
	listing.Condition = in.Condition
	listing.Location = in.Location

	if err := uc.listings.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to save listing", zap.Error(err))
		return nil, err
	}
	if err := uc.cascade.ListingCreated(ctx, listing); err != nil {
		// An unlinked listing would be unreachable for its poster.
		if delErr := uc.listings.Delete(context.WithoutCancel(ctx), listing.ID); delErr != nil {
			uc.logger.Error("Failed to remove unlinked listing", zap.String("listing_id", listing.ID), zap.Error(delErr))
		}
		return nil, err
	}
	p.OwnedListingIDs[listing.ID] = struct{}{}

	uc.notifyPoster(ctx, p.ID, listing)

	eventData := map[string]interface{}{
		"listing_id": listing.ID,
		"posted_by":  listing.PostedBy,
		"category":   listing.Category,
		"price":      listing.Price,
		"currency":   listing.Currency,
		"created_at": listing.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.events.Publish(ctx, SubjectListingCreated, eventData); err != nil {
		uc.logger.Warn("Failed to publish listing.created event", zap.Error(err), zap.String("listing_id", listing.ID))
	}

	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("posted_by", p.ID))
	return listing, nil
}

func (uc *ListingUsecase) notifyPoster(ctx context.Context, userID string, listing *domain.Listing) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		uc.logger.Warn("Failed to load poster for notification", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := uc.notifier.ListingCreated(ctx, user.Email, user.FirstName, listing.Title); err != nil {
		uc.logger.Warn("Failed to send listing created email", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

// Get returns a listing and records a view.
func (uc *ListingUsecase) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Listing, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceListing, &access.Target{ID: id}); err != nil {
		return nil, err
	}
	listing, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.IncrementViewCounter(ctx, id); err != nil {
		uc.logger.Warn("Failed to record listing view", zap.String("listing_id", id), zap.Error(err))
	}
	return listing, nil
}

// IncrementViewCounter records one view of listingID.
func (uc *ListingUsecase) IncrementViewCounter(ctx context.Context, listingID string) error {
	return uc.recorder.Increment(ctx, counter.Views, listingID, 1)
}

// load reads through the listing cache.
func (uc *ListingUsecase) load(ctx context.Context, id string) (*domain.Listing, error) {
	cached, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.logger.Warn("Listing cache read failed", zap.String("listing_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}
	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, listing); err != nil {
		uc.logger.Warn("Listing cache write failed", zap.String("listing_id", id), zap.Error(err))
	}
	return listing, nil
}

func (uc *ListingUsecase) List(ctx context.Context, p *domain.Principal, filter domain.ListingFilter) ([]*domain.Listing, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceListing, nil); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > maxListingPageSize {
		filter.Limit = maxListingPageSize
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Category != "" {
		filter.Category = normalizePath(filter.Category)
	}
	return uc.listings.List(ctx, filter)
}

// Update changes a listing. Users may only update listings they posted.
func (uc *ListingUsecase) Update(ctx context.Context, p *domain.Principal, id string, update domain.ListingUpdate) (*domain.Listing, error) {
	current, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.Authorize(p, access.ActionUpdate, access.ResourceListing, &access.Target{ID: id, OwnerID: current.PostedBy}); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, domain.NewError(domain.ErrInvalidInput, "You need to provide the fields to be updated!")
	}
	if update.Condition != nil && !update.Condition.IsValid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "Invalid condition.")
	}
	if update.Category != nil {
		category := normalizePath(*update.Category)
		if err := uc.checkCategory(ctx, category); err != nil {
			return nil, err
		}
		update.Category = &category
	}
	if update.Currency != nil {
		currency := strings.ToUpper(*update.Currency)
		update.Currency = &currency
	}

	listing, err := uc.listings.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	uc.evict(ctx, id)

	if err := uc.events.Publish(ctx, SubjectListingUpdated, map[string]interface{}{
		"listing_id": id,
		"updated_by": p.ID,
	}); err != nil {
		uc.logger.Warn("Failed to publish listing.updated event", zap.Error(err), zap.String("listing_id", id))
	}
	uc.logger.Info("Listing updated", zap.String("listing_id", id), zap.String("by", p.ID))
	return listing, nil
}

// Delete removes a listing and its references.
func (uc *ListingUsecase) Delete(ctx context.Context, p *domain.Principal, id string) (*domain.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.Authorize(p, access.ActionDelete, access.ResourceListing, &access.Target{ID: id, OwnerID: listing.PostedBy}); err != nil {
		return nil, err
	}
	if err := uc.listings.Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := uc.cascade.ListingDeleted(ctx, listing); err != nil {
		uc.logger.Error("Listing deleted with incomplete cascade", zap.String("listing_id", id), zap.Error(err))
	}
	delete(p.OwnedListingIDs, id)
	uc.logger.Info("Listing deleted", zap.String("listing_id", id), zap.String("by", p.ID))
	return listing, nil
}

type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadPhoto stores a photo and appends it to the listing. The first photo
// becomes the cover.
func (uc *ListingUsecase) UploadPhoto(ctx context.Context, p *domain.Principal, id string, photo PhotoUpload) (*domain.Listing, error) {
	if uc.storage == nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "Photo uploads are not enabled.")
	}
	current, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.Authorize(p, access.ActionUpdate, access.ResourceListing, &access.Target{ID: id, OwnerID: current.PostedBy}); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(photo.ContentType, "image/") {
		return nil, domain.NewError(domain.ErrInvalidInput, "Only image uploads are allowed.")
	}

	url, err := uc.storage.Upload(ctx, id, photo.FileName, photo.ContentType, photo.Body, photo.Size)
	if err != nil {
		uc.logger.Error("Failed to upload listing photo", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}
	listing, err := uc.listings.AddPhoto(ctx, id, url)
	if err != nil {
		return nil, err
	}
	uc.evict(ctx, id)
	uc.logger.Info("Listing photo uploaded", zap.String("listing_id", id), zap.String("url", url))
	return listing, nil
}

func (uc *ListingUsecase) checkCategory(ctx context.Context, path string) error {
	ok, err := uc.categories.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (uc *ListingUsecase) evict(ctx context.Context, id string) {
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.logger.Warn("Failed to evict listing from cache", zap.String("listing_id", id), zap.Error(err))
	}
}
