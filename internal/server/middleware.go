package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/musegen/muse-server/internal/storage"
)

type ctxKey int

const (
	ctxUser ctxKey = iota
	ctxToken
)

func userFrom(ctx context.Context) *storage.User {
	user, _ := ctx.Value(ctxUser).(*storage.User)
	return user
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(ctxToken).(string)
	return token
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	// WebSocket clients can't set headers from the browser API.
	return r.URL.Query().Get("token")
}

// authMiddleware resolves the bearer token to an account and rejects the
// request when the session is missing or expired.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		user, err := s.auth.UserFromToken(r.Context(), token)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: apiError{
				Code:    "unauthorized",
				Message: "missing or expired session",
			}})
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, user)
		ctx = context.WithValue(ctx, ctxToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware gates the admin surface on the account's role attribute.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if user == nil || user.Role != storage.RoleAdmin {
			s.writeError(w, r, http.StatusForbidden, "permission_denied", "toast_permission_denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}
