package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/comic-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/comic-platform/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	token, err := maker.GenerateToken("uid-1", "user@example.com", models.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "валидный токен проходит",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "отсутствующий заголовок",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "заголовок без Bearer",
			authHeader:     token,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "битый токен",
			authHeader:     "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, "uid-1", GetUserUID(r.Context()))
				assert.Equal(t, models.RoleUser, GetRole(r.Context()))
			})

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			JWTMiddleware(maker, newNoopLogger())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}

func TestOptionalJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	token, err := maker.GenerateToken("uid-1", "user@example.com", models.RoleUser)
	require.NoError(t, err)

	t.Run("без заголовка проходит анонимно", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, GetUserUID(r.Context()))
		})
		req := httptest.NewRequest(http.MethodGet, "/chapters/1/content", nil)
		w := httptest.NewRecorder()

		OptionalJWTMiddleware(maker, newNoopLogger())(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("валидный токен добавляет uid", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "uid-1", GetUserUID(r.Context()))
		})
		req := httptest.NewRequest(http.MethodGet, "/chapters/1/content", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		OptionalJWTMiddleware(maker, newNoopLogger())(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("предъявленный битый токен отклоняется", func(t *testing.T) {
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("next should not be called")
		})
		req := httptest.NewRequest(http.MethodGet, "/chapters/1/content", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()

		OptionalJWTMiddleware(maker, newNoopLogger())(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	run := func(role string) *httptest.ResponseRecorder {
		token, err := maker.GenerateToken("uid-1", "user@example.com", role)
		require.NoError(t, err)

		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		chain := JWTMiddleware(maker, newNoopLogger())(RequireAdmin(newNoopLogger())(next))

		req := httptest.NewRequest(http.MethodPost, "/comics", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, req)
		return w
	}

	t.Run("администратор проходит", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, run(models.RoleAdmin).Code)
	})

	t.Run("обычный пользователь получает 403", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, run(models.RoleUser).Code)
	})
}
