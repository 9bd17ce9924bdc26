package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yashkurhe5314/lms/internal/apperr"
	"github.com/yashkurhe5314/lms/internal/auth"
	"github.com/yashkurhe5314/lms/internal/models"
	"github.com/yashkurhe5314/lms/internal/store"
)

type ctxKey int

const principalKey ctxKey = iota

// PrincipalFrom returns the authenticated principal stored by Authenticate.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// Authenticator resolves bearer tokens into principals. The user store is
// consulted on every request so the effective role is always the stored one;
// the role claim inside the token is never trusted. A role demotion therefore
// takes effect on the next request, not at token expiry.
type Authenticator struct {
	tokens *auth.TokenIssuer
	users  store.UserStore
}

func NewAuthenticator(tokens *auth.TokenIssuer, users store.UserStore) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "authentication required"))
			return
		}

		claims, err := a.tokens.Validate(token)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "invalid token"))
			return
		}

		user, err := a.users.GetUser(r.Context(), userID)
		if err != nil {
			// A valid token for a deleted user is still unauthenticated.
			if errors.Is(err, apperr.ErrNotFound) {
				err = apperr.E(apperr.ErrUnauthenticated, "authentication required")
			}
			apperr.Write(w, err)
			return
		}

		principal := models.Principal{ID: user.ID, Role: user.Role}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to the given roles. It must run after
// Authenticate; a request with no principal is rejected as unauthenticated,
// never silently let through.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				apperr.Write(w, apperr.E(apperr.ErrUnauthenticated, "authentication required"))
				return
			}
			if !principal.HasRole(roles...) {
				apperr.Write(w, apperr.E(apperr.ErrForbidden, "access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
