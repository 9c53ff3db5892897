package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token, err := CreateToken(secret, "u1", true)
		require.NoError(t, err)
		claims, err := ParseToken(secret, token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Username)
		assert.True(t, claims.IsAdmin)
	})
	t.Run("wrong secret", func(t *testing.T) {
		token, err := CreateToken([]byte("other"), "u1", false)
		require.NoError(t, err)
		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken(secret, "not-a-token")
		assert.Error(t, err)
	})
}

// captured records the claims seen by the innermost handler.
func captured(out **Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*out, _ = UserFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	token, err := CreateToken(secret, "test", false)
	require.NoError(t, err)

	t.Run("works via header", func(t *testing.T) {
		var got *Claims
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		Authenticate(secret)(captured(&got)).ServeHTTP(rec, req)
		require.NotNil(t, got)
		assert.Equal(t, "test", got.Username)
		assert.False(t, got.IsAdmin)
	})

	t.Run("works with no header", func(t *testing.T) {
		var got *Claims
		rec := httptest.NewRecorder()
		Authenticate(secret)(captured(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, got)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("works with invalid token", func(t *testing.T) {
		var got *Claims
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		bad, _ := CreateToken([]byte("wrong"), "test", true)
		req.Header.Set("Authorization", "bearer "+bad)
		rec := httptest.NewRecorder()
		Authenticate(secret)(captured(&got)).ServeHTTP(rec, req)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func serve(h http.Handler, claims *Claims, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if claims != nil {
		req = req.WithContext(WithUser(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEnsureLoggedIn(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, http.StatusOK, serve(EnsureLoggedIn(ok), &Claims{Username: "test"}, "/").Code)

	rec := serve(EnsureLoggedIn(ok), nil, "/")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": {"message": "Unauthorized", "status": 401}}`, rec.Body.String())
}

func TestEnsureAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, http.StatusOK, serve(EnsureAdmin(ok), &Claims{Username: "a", IsAdmin: true}, "/").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(EnsureAdmin(ok), &Claims{Username: "u"}, "/").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(EnsureAdmin(ok), nil, "/").Code)
}

func TestEnsureAdminOrCorrectUser(t *testing.T) {
	r := chi.NewRouter()
	r.With(EnsureAdminOrCorrectUser("username")).Get("/users/{username}", func(w http.ResponseWriter, r *http.Request) {})

	assert.Equal(t, http.StatusOK, serve(r, &Claims{Username: "u1"}, "/users/u1").Code)
	assert.Equal(t, http.StatusOK, serve(r, &Claims{Username: "a1", IsAdmin: true}, "/users/u1").Code)

	rec := serve(r, &Claims{Username: "u2"}, "/users/u1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Must be admin or current user!")
	assert.Equal(t, http.StatusUnauthorized, serve(r, nil, "/users/u1").Code)
}
