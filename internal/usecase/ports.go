package usecase

import (
	"context"
	"io"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
)

// Event subjects published on the message bus.
const (
	SubjectUserRegistered     = "user.registered"
	SubjectListingCreated     = "listing.created"
	SubjectListingUpdated     = "listing.updated"
	SubjectListingDeleted     = "listing.deleted"
	SubjectReviewCreated      = "review.created"
	SubjectReportCreated      = "report.created"
	SubjectCountersReconciled = "counters.reconciled"
)

// Authorizer is satisfied by *access.Engine.
type Authorizer interface {
	Authorize(p *domain.Principal, action access.Action, resource access.Resource, target *access.Target) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type PhotoStorage interface {
	Upload(ctx context.Context, listingID, fileName, contentType string, body io.Reader, size int64) (string, error)
}

type ListingNotifier interface {
	ListingCreated(ctx context.Context, toEmail, firstName, listingTitle string) error
}

// ListingCache is a read-through cache; Get returns nil, nil on a miss.
type ListingCache interface {
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Set(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id string) error
}

type CounterRecorder interface {
	Increment(ctx context.Context, c counter.Counter, listingID string, delta int64) error
}

// NopPublisher is used when no NATS URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// NopNotifier is used when SMTP is not configured.
type NopNotifier struct{}

func (NopNotifier) ListingCreated(context.Context, string, string, string) error { return nil }

// NopCache disables listing caching.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.Listing, error) { return nil, nil }
func (NopCache) Set(context.Context, *domain.Listing) error          { return nil }
func (NopCache) Delete(context.Context, string) error                { return nil }
