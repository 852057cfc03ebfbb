package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/carwise/internal/auth"
)

func newTestAuth() *auth.Service {
	return auth.NewService("test-jwt-secret", "", time.Hour)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := newTestAuth()
	middleware := NewAuthMiddleware(authService)

	t.Run("valid token", func(t *testing.T) {
		token, _ := authService.GenerateToken(424242, "testuser")

		req := httptest.NewRequest("POST", "/api/update", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := ClaimsFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, int64(424242), claims.ChatID)
			assert.Equal(t, "testuser", claims.Username)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/update", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/update", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip auth path", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/auth/token", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(5, 60)(handler)
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(1, 60)(handler)

		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handlerCalled = false
		rateLimitHandler.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("authenticated chats limited independently", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		rateLimitHandler := middleware.RateLimit(1, 60)(handler)

		send := func(chatID int64) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/api/update", nil)
			req.RemoteAddr = "192.168.1.3:12345"
			ctx := context.WithValue(req.Context(), ClaimsContextKey, &auth.Claims{ChatID: chatID})
			w := httptest.NewRecorder()
			rateLimitHandler.ServeHTTP(w, req.WithContext(ctx))
			return w
		}

		assert.Equal(t, http.StatusOK, send(1).Code)
		assert.Equal(t, http.StatusOK, send(2).Code)
		assert.Equal(t, http.StatusTooManyRequests, send(1).Code)
	})
}

func TestClaimsFromContext(t *testing.T) {
	claims := &auth.Claims{ChatID: 7, Username: "testuser"}

	ctx := context.WithValue(context.Background(), ClaimsContextKey, claims)

	got, ok := ClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims.ChatID, got.ChatID)
	assert.Equal(t, claims.Username, got.Username)

	_, ok = ClaimsFromContext(context.Background())
	assert.False(t, ok)
}
