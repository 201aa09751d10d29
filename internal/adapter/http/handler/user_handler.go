package handler

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// UserService is satisfied by *usecase.UserUsecase.
type UserService interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, p *domain.Principal) error
	LogoutAll(ctx context.Context, p *domain.Principal) error
	GetProfile(ctx context.Context, p *domain.Principal, id string) (*domain.User, error)
	ListUsers(ctx context.Context, p *domain.Principal, skip, limit int64) ([]*domain.User, error)
	UpdateUser(ctx context.Context, p *domain.Principal, id string, update domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, p *domain.Principal, id string) (*domain.User, error)
}

type UserHandler struct {
	users UserService
	rs    *shared.Responder
}

func NewUserHandler(users UserService, rs *shared.Responder) *UserHandler {
	return &UserHandler{users: users, rs: rs}
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,min=3"`
	LastName  string `json:"lastName" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=3"`
	LastName  *string `json:"lastName" validate:"omitempty,min=3"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	Bio       *string `json:"bio" validate:"omitempty,max=150"`
}

type sessionResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, token, err := h.users.Register(r.Context(), usecase.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, sessionResponse{User: newUserView(user, true), Token: token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, sessionResponse{User: newUserView(user, true), Token: token})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), shared.PrincipalFrom(r.Context())); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, messageResponse{Message: "Logout successful."})
}

func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.users.LogoutAll(r.Context(), shared.PrincipalFrom(r.Context())); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, messageResponse{Message: "Logout all successful."})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.rs.JSON(w, http.StatusOK, newUserView(shared.UserFrom(r.Context()), true))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFrom(r.Context())
	id := chi.URLParam(r, "id")
	user, err := h.users.GetProfile(r.Context(), p, id)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newUserView(user, p.OwnsProfile(id) || p.IsAdmin()))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
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
	users, err := h.users.ListUsers(r.Context(), shared.PrincipalFrom(r.Context()), skip, limit)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u, true))
	}
	h.rs.JSON(w, http.StatusOK, out)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.users.UpdateUser(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), domain.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Avatar:    req.Avatar,
		Bio:       req.Bio,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newUserView(user, true))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.DeleteUser(r.Context(), shared.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, newUserView(user, true))
}
