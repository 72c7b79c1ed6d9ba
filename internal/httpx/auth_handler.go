package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"

	"github.com/tokohq/go-shop-api/internal/auth"
	"github.com/tokohq/go-shop-api/internal/shop"
)

// UserDirectory is the slice of the user store the auth and user
// handlers need.
type UserDirectory interface {
	Create(ctx context.Context, u *shop.User) error
	FindByEmail(ctx context.Context, email string) (shop.User, error)
	FindByID(ctx context.Context, id string) (shop.User, error)
	List(ctx context.Context, page, limit int) ([]shop.User, int, error)
	Delete(ctx context.Context, id string) error
}

type AuthHandler struct {
	Users      UserDirectory
	Tokens     *auth.Tokens
	BcryptCost int
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/v1/auth/register", h.register)
	r.Post("/api/v1/auth/login", h.login)
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req registerReq) validate() []string {
	var errs []string
	if len(req.Username) < 3 {
		errs = append(errs, "Username must be at least 3 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, "Invalid email")
	}
	if len(req.Password) < 6 {
		errs = append(errs, "Password must be at least 6 characters")
	}
	return errs
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, "Validation failed", errs...)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}

	user := shop.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         shop.RoleUser,
	}
	if err := h.Users.Create(r.Context(), &user); err != nil {
		if errors.Is(err, shop.ErrDuplicateUser) {
			writeFailure(w, http.StatusBadRequest, "Username or email already exists")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully", map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Validation failed", "Email and password are required")
		return
	}

	user, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, shop.ErrUserNotFound) {
			writeFailure(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", map[string]string{"token": token})
}
