package handler

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

const maxPhotoBytes = 10 << 20

// ListingService is satisfied by *usecase.ListingUsecase.
type ListingService interface {
	Create(ctx context.Context, p *domain.Principal, in usecase.CreateListingInput) (*domain.Listing, error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.Listing, error)
	List(ctx context.Context, p *domain.Principal, filter domain.ListingFilter) ([]*domain.Listing, error)
	Update(ctx context.Context, p *domain.Principal, id string, update domain.ListingUpdate) (*domain.Listing, error)
	Delete(ctx context.Context, p *domain.Principal, id string) (*domain.Listing, error)
	UploadPhoto(ctx context.Context, p *domain.Principal, id string, photo usecase.PhotoUpload) (*domain.Listing, error)
}

type ListingHandler struct {
	listings ListingService
	rs       *shared.Responder
}

func NewListingHandler(listings ListingService, rs *shared.Responder) *ListingHandler {
	return &ListingHandler{listings: listings, rs: rs}
}

type locationRequest struct {
	Type        string    `json:"type" validate:"omitempty,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"len=2"`
	City        string    `json:"city"`
	CountryCode string    `json:"countryCode"`
	PostalCode  string    `json:"postalCode"`
}

func (l *locationRequest) toDomain() *domain.Location {
	if l == nil {
		return nil
	}
	return &domain.Location{
		Type:        l.Type,
		Coordinates: l.Coordinates,
		City:        l.City,
		CountryCode: l.CountryCode,
		PostalCode:  l.PostalCode,
	}
}

type photosRequest struct {
	Cover  string   `json:"cover" validate:"omitempty,url"`
	Photos []string `json:"photos" validate:"dive,url"`
}

type createListingRequest struct {
	Title       string           `json:"title" validate:"required,min=3,max=70"`
	Description string           `json:"description" validate:"max=1000"`
	Category    string           `json:"category" validate:"required"`
	Price       float64          `json:"price" validate:"gte=0"`
	Currency    string           `json:"currency" validate:"required,len=3,alpha"`
	Photos      photosRequest    `json:"photos"`
	Condition   string           `json:"condition"`
	Location    *locationRequest `json:"location"`
}

type updateListingRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=70"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Category    *string          `json:"category" validate:"omitempty,min=2"`
	Price       *float64         `json:"price" validate:"omitempty,gte=0"`
	Currency    *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Photos      *photosRequest   `json:"photos"`
	Condition   *string          `json:"condition"`
	Location    *locationRequest `json:"location"`
	IsSold      *bool            `json:"isSold"`
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	listing, err := h.listings.Create(r.Context(), shared.PrincipalFrom(r.Context()), usecase.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    req.Currency,
		Photos:      domain.Photos{Cover: req.Photos.Cover, Photos: req.Photos.Photos},
		Condition:   domain.Condition(req.Condition),
		Location:    req.Location.toDomain(),
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, newListingView(listing))
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.Get(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newListingView(listing))
}

// List handles GET /listings?category=&postedBy=&skip=&limit=.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := shared.QueryInt64(r, "skip")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	limit, err := shared.QueryInt64(r, "limit")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	q := r.URL.Query()
	listings, err := h.listings.List(r.Context(), shared.PrincipalFrom(r.Context()), domain.ListingFilter{
		Category: q.Get("category"),
		PostedBy: q.Get("postedBy"),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newListingViews(listings))
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateListingRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	update := domain.ListingUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    req.Currency,
		Location:    req.Location.toDomain(),
		IsSold:      req.IsSold,
	}
	if req.Photos != nil {
		update.Photos = &domain.Photos{Cover: req.Photos.Cover, Photos: req.Photos.Photos}
	}
	if req.Condition != nil {
		c := domain.Condition(*req.Condition)
		update.Condition = &c
	}

	listing, err := h.listings.Update(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), update)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newListingView(listing))
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.Delete(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newListingView(listing))
}

// UploadPhoto handles a multipart upload with the image in the "photo" field.
func (h *ListingHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1<<10)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		h.rs.Error(w, r, domain.NewError(domain.ErrInvalidInput, "Invalid multipart upload."))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		h.rs.Error(w, r, domain.NewError(domain.ErrInvalidInput, "The photo field is required."))
		return
	}
	defer file.Close()

	listing, err := h.listings.UploadPhoto(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), usecase.PhotoUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newListingView(listing))
}
