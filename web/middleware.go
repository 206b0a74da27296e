// ABOUTME: Authentication and authorization middleware
// ABOUTME: Turns verified JWT claims into a request user and gates admin routes
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/models"
)

type ctxKey struct{}

// UserFromContext returns the authenticated user, or nil outside authRequired.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKey{}).(*models.User)
	return user
}

func authRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			Unauthorized(w, "missing token")
			return
		}

		user, err := auth.UserFromClaims(claims)
		if err != nil {
			HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(UserFromContext(r.Context())); err != nil {
			HandleError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// serialize runs one request at a time against the state container.
func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}
