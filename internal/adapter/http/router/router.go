package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services behind the HTTP API.
type Deps struct {
	Resolver   middleware.PrincipalResolver
	Users      handler.UserService
	Favorites  handler.FavoriteService
	Listings   handler.ListingService
	Categories handler.CategoryService
	Reviews    handler.ReviewService
	Reports    handler.ReportService
	Health     map[string]handler.Pinger
	Metrics    *metrics.MetricsManager
	Logger     *logger.Logger
}

// New builds the chi router with every route of the API.
func New(d Deps) http.Handler {
	rs := shared.NewResponder(d.Logger, d.Metrics)
	auth := middleware.NewAuthMiddleware(d.Resolver, rs)
	body := middleware.RequireBody(rs)

	users := handler.NewUserHandler(d.Users, rs)
	favorites := handler.NewFavoriteHandler(d.Favorites, rs)
	listings := handler.NewListingHandler(d.Listings, rs)
	categories := handler.NewCategoryHandler(d.Categories, rs)
	reviews := handler.NewReviewHandler(d.Reviews, rs)
	reports := handler.NewReportHandler(d.Reports, rs)
	health := handler.NewHealthHandler(d.Health, rs, d.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observe(d.Logger, d.Metrics))
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rs.Error(w, r, domain.NewError(domain.ErrNotFound, "Can't find %s on this server!", r.URL.Path))
	})

	r.Get("/healthz", health.Healthz)

	r.With(body).Post("/auth/register", users.Register)
	r.With(body).Post("/auth/login", users.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Post("/auth/logout", users.Logout)
		r.Post("/auth/logout-all", users.LogoutAll)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.List)
			r.Get("/me", users.Me)
			r.Get("/{id}", users.Get)
			r.With(body).Patch("/{id}", users.Update)
			r.Delete("/{id}", users.Delete)
			r.Get("/{id}/favorites", favorites.List)
			r.Delete("/{id}/favorites/{listingId}", favorites.RemoveFor)
		})

		r.With(body).Post("/favorites", favorites.Add)
		r.Delete("/favorites/{id}", favorites.Remove)

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", listings.List)
			r.With(body).Post("/", listings.Create)
			r.Get("/{id}", listings.Get)
			r.With(body).Patch("/{id}", listings.Update)
			r.Delete("/{id}", listings.Delete)
			r.Post("/{id}/photos", listings.UploadPhoto)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Get("/all", categories.All)
			r.With(body).Post("/", categories.Create)
			r.Get("/{id}", categories.Get)
			r.Get("/{id}/subcategories", categories.Subcategories)
			r.With(body).Patch("/{id}", categories.Update)
			r.Delete("/{id}", categories.Delete)
		})

		r.With(body).Post("/reviews", reviews.Create)
		r.Get("/reviews/{userId}", reviews.ForUser)
		r.Get("/listing-reviews/{listingId}", reviews.ForListing)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/listing-subjects", reports.ListingSubjects)
			r.Get("/user-subjects", reports.UserSubjects)
			r.Get("/listings", reports.ListFor(domain.ReportTargetListing))
			r.Get("/users", reports.ListFor(domain.ReportTargetUser))
			r.With(body).Post("/", reports.Create)
			r.Get("/{id}", reports.Get)
			r.With(body).Patch("/{id}", reports.Update)
			r.Delete("/{id}", reports.Delete)
		})
	})

	return r
}
