package handler

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// ReviewService is satisfied by *usecase.ReviewUsecase.
type ReviewService interface {
	Create(ctx context.Context, p *domain.Principal, in usecase.CreateReviewInput) (*domain.Review, error)
	ListForUser(ctx context.Context, p *domain.Principal, userID string) ([]*domain.Review, error)
	ListForListing(ctx context.Context, p *domain.Principal, listingID string) ([]*domain.Review, error)
}

type ReviewHandler struct {
	reviews ReviewService
	rs      *shared.Responder
}

func NewReviewHandler(reviews ReviewService, rs *shared.Responder) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, rs: rs}
}

type choicesRequest struct {
	Polite         int `json:"polite" validate:"oneof=0 1"`
	ShowedUpOnTime int `json:"showedUpOnTime" validate:"oneof=0 1"`
	FairPrices     int `json:"fairPrices" validate:"oneof=0 1"`
	QuickResponses int `json:"quickResponses" validate:"oneof=0 1"`
	Trustworthy    int `json:"trustworthy" validate:"oneof=0 1"`
	Helpful        int `json:"helpful" validate:"oneof=0 1"`
}

type createReviewRequest struct {
	ReviewedUser string         `json:"reviewedUser" validate:"required"`
	Listing      string         `json:"listing" validate:"required"`
	Rating       int            `json:"rating" validate:"required,min=1,max=5"`
	Message      string         `json:"message" validate:"max=150"`
	Choices      choicesRequest `json:"choices"`
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	review, err := h.reviews.Create(r.Context(), shared.PrincipalFrom(r.Context()), usecase.CreateReviewInput{
		ReviewedUser: req.ReviewedUser,
		ListingID:    req.Listing,
		Rating:       req.Rating,
		Message:      req.Message,
		Choices: domain.ReviewChoices{
			Polite:         req.Choices.Polite,
			ShowedUpOnTime: req.Choices.ShowedUpOnTime,
			FairPrices:     req.Choices.FairPrices,
			QuickResponses: req.Choices.QuickResponses,
			Trustworthy:    req.Choices.Trustworthy,
			Helpful:        req.Choices.Helpful,
		},
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, newReviewView(review))
}

// ForUser handles GET /reviews/{userId}.
func (h *ReviewHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListForUser(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newReviewViews(reviews))
}

// ForListing handles GET /listing-reviews/{listingId}.
func (h *ReviewHandler) ForListing(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListForListing(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "listingId"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newReviewViews(reviews))
}
