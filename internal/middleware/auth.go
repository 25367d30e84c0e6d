package middleware

import (
	"context"
	"net/http"

	"github.com/hongminglow/ledgerdash/internal/models"
)

// LoginPath is where unauthenticated or wrong-role requests are sent.
const LoginPath = "/login"

// Authorizer resolves the active session for a set of allowed roles.
type Authorizer interface {
	Authorize(roles ...models.Role) (*models.Session, error)
}

type sessionKey struct{}

// RequireRole redirects to the login screen when there is no session or its
// role is not one of roles. The session is stored on the request context.
func RequireRole(auth Authorizer, roles []models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := auth.Authorize(roles...)
		if err != nil {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

// SessionFrom returns the session RequireRole attached, or nil.
func SessionFrom(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(sessionKey{}).(*models.Session)
	return sess
}
