package domain

import "context"

// UserRepository persists users, their session tokens and their references to
// listings and reviews.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDAndToken returns the user only if token is in its active token list.
	FindByIDAndToken(ctx context.Context, id, token string) (*User, error)
	List(ctx context.Context, skip, limit int64) ([]*User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*User, error)
	Delete(ctx context.Context, id string) error

	AddToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error

	AddListing(ctx context.Context, userID, listingID string) error
	RemoveListing(ctx context.Context, userID, listingID string) error
	AddReview(ctx context.Context, userID, reviewID string) error
}

// FavoriteRepository maintains the per-user favorite set. Add and Remove are
// atomic conditional writes: Add fails with ErrAlreadyFavorited when the
// relation exists, Remove fails with ErrNotFavorited when it does not.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, listingID string) error
	Remove(ctx context.Context, userID, listingID string) error
	// RemoveFromAll drops listingID from every user's favorites.
	RemoveFromAll(ctx context.Context, listingID string) (int64, error)
}

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	Update(ctx context.Context, id string, update ListingUpdate) (*Listing, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	AddPhoto(ctx context.Context, id, url string) (*Listing, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByPath(ctx context.Context, path string) (*Category, error)
	ListByParent(ctx context.Context, parent string) ([]*Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	ListByListing(ctx context.Context, listingID string) ([]*Review, error)
	ListByReviewedUser(ctx context.Context, userID string) ([]*Review, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	FindByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, filter ReportFilter) ([]*Report, error)
	Update(ctx context.Context, id string, update ReportUpdate) (*Report, error)
	Delete(ctx context.Context, id string) error
}
