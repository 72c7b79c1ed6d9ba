package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tokohq/go-shop-api/internal/auth"
	"github.com/tokohq/go-shop-api/internal/shop"
)

type UsersHandler struct {
	Users  UserDirectory
	Tokens *auth.Tokens
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Group(func(g chi.Router) {
		g.Use(Authenticate(h.Tokens))
		g.Get("/api/v1/users/me", h.me)
	})
	r.Group(func(g chi.Router) {
		g.Use(Authenticate(h.Tokens), RequireAdmin)
		g.Get("/api/v1/users", h.list)
		g.Get("/api/v1/users/{id}", h.get)
		g.Delete("/api/v1/users/{id}", h.delete)
	})
}

func (h *UsersHandler) me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	user, err := h.Users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, shop.ErrUserNotFound) {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "Profile fetched", user)
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, total, err := h.Users.List(r.Context(), page, limit)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writePaged(w, "Users fetched successfully", users, page, limit, total)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shop.ErrUserNotFound) {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "User fetched successfully", user)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, shop.ErrUserNotFound) {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
