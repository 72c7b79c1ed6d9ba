package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokohq/go-shop-api/internal/auth"
	"github.com/tokohq/go-shop-api/internal/shop"
)

func newUsersRouter(users *fakeUserDirectory, tokens *auth.Tokens) http.Handler {
	r := NewRouter()
	(&UsersHandler{Users: users, Tokens: tokens}).Register(r)
	return r
}

func seedUser(t *testing.T, users *fakeUserDirectory, username, email, role string) shop.User {
	t.Helper()
	u := shop.User{Username: username, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, users.Create(context.Background(), &u))
	return u
}

func TestUsersMe(t *testing.T) {
	t.Parallel()
	tokens := testTokens()

	get := func(router http.Handler, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("requires authentication", func(t *testing.T) {
		router := newUsersRouter(newFakeUserDirectory(), tokens)
		rec := get(router, "/api/v1/users/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns the token's user without the hash", func(t *testing.T) {
		users := newFakeUserDirectory()
		alice := seedUser(t, users, "alice", "alice@example.com", shop.RoleUser)
		router := newUsersRouter(users, tokens)

		rec := get(router, "/api/v1/users/me", bearerFor(t, tokens, alice.ID, "alice", shop.RoleUser))
		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeEnvelope(t, rec)
		obj, ok := resp.Object.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", obj["username"])
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("stale token for a deleted user is a 404", func(t *testing.T) {
		router := newUsersRouter(newFakeUserDirectory(), tokens)
		rec := get(router, "/api/v1/users/me", bearerFor(t, tokens, uuid.NewString(), "ghost", shop.RoleUser))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUsersAdminRoutes(t *testing.T) {
	t.Parallel()
	tokens := testTokens()
	admin := bearerFor(t, tokens, "admin-1", "root", shop.RoleAdmin)

	do := func(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("plain user cannot list users", func(t *testing.T) {
		router := newUsersRouter(newFakeUserDirectory(), tokens)
		rec := do(router, http.MethodGet, "/api/v1/users", bearerFor(t, tokens, "user-1", "alice", shop.RoleUser))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin list uses the paged envelope", func(t *testing.T) {
		users := newFakeUserDirectory()
		seedUser(t, users, "alice", "alice@example.com", shop.RoleUser)
		seedUser(t, users, "bob", "bob@example.com", shop.RoleUser)
		router := newUsersRouter(users, tokens)

		rec := do(router, http.MethodGet, "/api/v1/users", admin)
		assert.Equal(t, http.StatusOK, rec.Code)
		var paged pagedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paged))
		assert.Equal(t, 2, paged.TotalSize)
		assert.Equal(t, 1, paged.PageNumber)
		assert.Equal(t, 10, paged.PageSize)
	})

	t.Run("get and delete round trip", func(t *testing.T) {
		users := newFakeUserDirectory()
		alice := seedUser(t, users, "alice", "alice@example.com", shop.RoleUser)
		router := newUsersRouter(users, tokens)

		rec := do(router, http.MethodGet, "/api/v1/users/"+alice.ID, admin)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = do(router, http.MethodDelete, "/api/v1/users/"+alice.ID, admin)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = do(router, http.MethodGet, "/api/v1/users/"+alice.ID, admin)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(router, http.MethodDelete, "/api/v1/users/"+alice.ID, admin)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
