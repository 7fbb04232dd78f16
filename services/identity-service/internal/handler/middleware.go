package handler

import (
	"context"
	"net/http"

	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
)

type contextKey struct{}

var sessionUserKey = contextKey{}

// session resolves the cookie into a user and stores it on the request
// context. Anything short of a valid token for an existing user leaves the
// request anonymous; it never fails the request.
func (h *Handler) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(accessTokenCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := h.issuer.Verify(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.users.GetUserByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the session user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(sessionUserKey).(*model.User)
	return user
}
