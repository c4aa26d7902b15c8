package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(UserIDFromContext(r.Context()) + "|" + RoleFromContext(r.Context())))
}

func newAuth(t *testing.T, secret string) *Auth {
	t.Helper()
	auth, err := NewAuth(secret)
	require.NoError(t, err)
	return auth
}

func TestNewAuth_RejectsEmptySecret(t *testing.T) {
	auth, err := NewAuth("")

	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.Nil(t, auth)
}

func TestAuthenticate(t *testing.T) {
	auth := newAuth(t, "test-secret")
	h := auth.Authenticate(http.HandlerFunc(okHandler))

	token, err := auth.IssueToken("user-1", RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1|admin", rec.Body.String())
}

func TestAuthenticate_Rejects(t *testing.T) {
	auth := newAuth(t, "test-secret")
	h := auth.Authenticate(http.HandlerFunc(okHandler))

	foreign, err := newAuth(t, "other-secret").IssueToken("user-1", "")
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + foreign},
		{"missing subject", "Bearer " + noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"UNAUTHENTICATED","message":"missing or invalid bearer token"}`, rec.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(RoleAdmin)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), "user-1", "")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), "user-1", RoleAdmin)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	defer rl.Stop()
	h := rl.Handler(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/wompi", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/wompi", nil)
	req.RemoteAddr = "198.51.100.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	var pattern string
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{leadID}", func(w http.ResponseWriter, r *http.Request) {
		pattern = routePattern(r)
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "/leads/{leadID}", pattern)
	assert.Equal(t, "unmatched", routePattern(httptest.NewRequest(http.MethodGet, "/", nil)))
}
