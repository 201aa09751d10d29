package domain

import (
	"time"
)

// ReviewChoices are the tick-box compliments a reviewer can give.
type ReviewChoices struct {
	Polite         int
	ShowedUpOnTime int
	FairPrices     int
	QuickResponses int
	Trustworthy    int
	Helpful        int
}

// Review is feedback left by one user about another after a deal on a listing.
type Review struct {
	ID           string
	Rating       int
	Choices      ReviewChoices
	ListingID    string
	Message      string
	ReviewedUser string
	ReviewedBy   string
	CreatedAt    time.Time
}

// NewReview validates and creates a review.
func NewReview(reviewedBy, reviewedUser, listingID string, rating int, message string, choices ReviewChoices) (*Review, error) {
	if reviewedBy == reviewedUser {
		return nil, ErrSelfReview
	}
	if rating < 1 || rating > 5 {
		return nil, NewError(ErrInvalidInput, "Rating must be between 1 and 5.")
	}
	if len([]rune(message)) > 150 {
		return nil, NewError(ErrInvalidInput, "Message must be at most 150 characters.")
	}
	return &Review{
		Rating:       rating,
		Choices:      choices,
		ListingID:    listingID,
		Message:      message,
		ReviewedUser: reviewedUser,
		ReviewedBy:   reviewedBy,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
