package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// ReportService is satisfied by *usecase.ReportUsecase.
type ReportService interface {
	Subjects(target domain.ReportTarget) []domain.Subject
	Create(ctx context.Context, p *domain.Principal, in usecase.CreateReportInput) (*domain.Report, error)
	List(ctx context.Context, p *domain.Principal, filter domain.ReportFilter) ([]*domain.Report, error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.Report, error)
	Update(ctx context.Context, p *domain.Principal, id string, update domain.ReportUpdate) (*domain.Report, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
}

type ReportHandler struct {
	reports ReportService
	rs      *shared.Responder
}

func NewReportHandler(reports ReportService, rs *shared.Responder) *ReportHandler {
	return &ReportHandler{reports: reports, rs: rs}
}

type createReportRequest struct {
	ReportedListing string `json:"reportedListing"`
	ReportedUser    string `json:"reportedUser"`
	Subject         int    `json:"subject" validate:"required"`
	Message         string `json:"message" validate:"max=1000"`
}

type updateReportRequest struct {
	Subject *int    `json:"subject"`
	Message *string `json:"message" validate:"omitempty,max=1000"`
}

func (h *ReportHandler) ListingSubjects(w http.ResponseWriter, r *http.Request) {
	h.rs.JSON(w, http.StatusOK, newSubjectViews(h.reports.Subjects(domain.ReportTargetListing)))
}

func (h *ReportHandler) UserSubjects(w http.ResponseWriter, r *http.Request) {
	h.rs.JSON(w, http.StatusOK, newSubjectViews(h.reports.Subjects(domain.ReportTargetUser)))
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	report, err := h.reports.Create(r.Context(), shared.PrincipalFrom(r.Context()), usecase.CreateReportInput{
		ReportedListing: req.ReportedListing,
		ReportedUser:    req.ReportedUser,
		Subject:         req.Subject,
		Message:         req.Message,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, newReportView(report))
}

// ListFor returns the handler for GET /reports/listings or /reports/users.
func (h *ReportHandler) ListFor(target domain.ReportTarget) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := reportFilter(r, target)
		if err != nil {
			h.rs.Error(w, r, err)
			return
		}
		reports, err := h.reports.List(r.Context(), shared.PrincipalFrom(r.Context()), filter)
		if err != nil {
			h.rs.Error(w, r, err)
			return
		}
		out := make([]reportView, 0, len(reports))
		for _, rep := range reports {
			out = append(out, newReportView(rep))
		}
		h.rs.JSON(w, http.StatusOK, out)
	}
}

func reportFilter(r *http.Request, target domain.ReportTarget) (domain.ReportFilter, error) {
	q := r.URL.Query()
	filter := domain.ReportFilter{
		Target:       target,
		PostedWithin: domain.PostedWithinDuration(q.Get("postedWithin")),
		SortBy:       q.Get("sortBy"),
	}
	switch q.Get("orderBy") {
	case "", "desc":
		filter.Descending = true
	case "asc":
	default:
		return filter, domain.NewError(domain.ErrInvalidInput, "orderBy must be asc or desc.")
	}
	if raw := q.Get("subject"); raw != "" {
		subject, err := strconv.Atoi(raw)
		if err != nil {
			return filter, domain.ErrInvalidSubject
		}
		filter.Subject = &subject
	}
	var err error
	if filter.Skip, err = shared.QueryInt64(r, "skip"); err != nil {
		return filter, err
	}
	if filter.Limit, err = shared.QueryInt64(r, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newReportView(report))
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateReportRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	report, err := h.reports.Update(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"),
		domain.ReportUpdate{Subject: req.Subject, Message: req.Message})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newReportView(report))
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.Delete(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusNoContent, nil)
}
