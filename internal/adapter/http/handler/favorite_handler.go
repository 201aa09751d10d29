package handler

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// FavoriteService is satisfied by *usecase.FavoriteUsecase.
type FavoriteService interface {
	Favorite(ctx context.Context, p *domain.Principal, listingID string) (*domain.User, error)
	Unfavorite(ctx context.Context, p *domain.Principal, ownerID, listingID string) (*domain.User, error)
	List(ctx context.Context, p *domain.Principal, userID string) ([]*domain.Listing, error)
}

type FavoriteHandler struct {
	favorites FavoriteService
	rs        *shared.Responder
}

func NewFavoriteHandler(favorites FavoriteService, rs *shared.Responder) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, rs: rs}
}

type favoriteRequest struct {
	ID string `json:"id" validate:"required"`
}

// Add handles POST /favorites {"id": listingId}.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.favorites.Favorite(r.Context(), shared.PrincipalFrom(r.Context()), req.ID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newUserView(user, true))
}

// Remove handles DELETE /favorites/{id} on the principal's own set.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFrom(r.Context())
	user, err := h.favorites.Unfavorite(r.Context(), p, p.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newUserView(user, true))
}

// RemoveFor handles DELETE /users/{id}/favorites/{listingId}.
func (h *FavoriteHandler) RemoveFor(w http.ResponseWriter, r *http.Request) {
	user, err := h.favorites.Unfavorite(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "listingId"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newUserView(user, true))
}

// List handles GET /users/{id}/favorites.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.favorites.List(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newListingViews(listings))
}
