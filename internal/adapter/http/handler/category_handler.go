package handler

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CategoryService is satisfied by *usecase.CategoryUsecase.
type CategoryService interface {
	All(ctx context.Context, p *domain.Principal) ([]domain.CategoryTree, error)
	TopLevel(ctx context.Context, p *domain.Principal) ([]*domain.Category, error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.Category, error)
	Subcategories(ctx context.Context, p *domain.Principal, id string) ([]*domain.Category, error)
	Create(ctx context.Context, p *domain.Principal, name, parent string) (*domain.Category, error)
	Update(ctx context.Context, p *domain.Principal, id string, update domain.CategoryUpdate) (*domain.Category, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
}

type CategoryHandler struct {
	categories CategoryService
	rs         *shared.Responder
}

func NewCategoryHandler(categories CategoryService, rs *shared.Responder) *CategoryHandler {
	return &CategoryHandler{categories: categories, rs: rs}
}

type createCategoryRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=50"`
	Parent string `json:"parent"`
}

type updateCategoryRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=50"`
	Parent *string `json:"parent"`
}

func (h *CategoryHandler) All(w http.ResponseWriter, r *http.Request) {
	trees, err := h.categories.All(r.Context(), shared.PrincipalFrom(r.Context()))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	out := make([]categoryTreeView, 0, len(trees))
	for _, t := range trees {
		out = append(out, categoryTreeView{categoryView: newCategoryView(t.Category), Subcategories: newCategoryViews(t.Subcategories)})
	}
	h.rs.JSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.categories.TopLevel(r.Context(), shared.PrincipalFrom(r.Context()))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newCategoryViews(cs))
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newCategoryView(c))
}

func (h *CategoryHandler) Subcategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.categories.Subcategories(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newCategoryViews(cs))
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	c, err := h.categories.Create(r.Context(), shared.PrincipalFrom(r.Context()), req.Name, req.Parent)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, newCategoryView(c))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	c, err := h.categories.Update(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"),
		domain.CategoryUpdate{Name: req.Name, Parent: req.Parent})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newCategoryView(c))
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusNoContent, nil)
}
