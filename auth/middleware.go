package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

type ctxKey struct{}

var bearer = regexp.MustCompile(`^[Bb]earer `)

func WithUser(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// UserFrom returns the verified claims of the current request, if any.
func UserFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// Authenticate verifies a bearer token when one is sent and stores its claims
// on the request context. Missing or invalid tokens are not an error here.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); header != "" {
				token := strings.TrimSpace(bearer.ReplaceAllString(header, ""))
				if claims, err := ParseToken(secret, token); err == nil {
					r = r.WithContext(WithUser(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EnsureLoggedIn rejects anonymous requests.
func EnsureLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); !ok {
			unauthorized(w, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EnsureAdmin lets through only tokens with isAdmin set.
func EnsureAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := UserFrom(r.Context()); ok && user.IsAdmin {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, "Unauthorized")
	})
}

// EnsureAdminOrCorrectUser lets through admins and the user named by the
// given URL parameter.
func EnsureAdminOrCorrectUser(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if ok && (user.IsAdmin || user.Username == chi.URLParam(r, param)) {
				next.ServeHTTP(w, r)
				return
			}
			unauthorized(w, "Must be admin or current user!")
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"message": msg, "status": http.StatusUnauthorized},
	})
}
