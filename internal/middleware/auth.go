// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/resale-console/internal/account"
	"github.com/carterperez-dev/templates/resale-console/internal/core"
)

const IdentityKey contextKey = "identity"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the caller resolved from a bearer token, either an admin or a
// customer. State is only meaningful for RoleUser.
type Identity struct {
	ID    string
	Role  Role
	State account.State
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

func (i *Identity) IsUser() bool {
	return i != nil && i.Role == RoleUser
}

// CanActFor reports whether the caller may act on the customer userID.
func (i *Identity) CanActFor(userID string) bool {
	if i == nil {
		return false
	}
	return i.IsAdmin() || i.ID == userID
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// IdentityResolver turns a token subject into an Identity. It returns
// core.ErrNotFound when the subject matches neither an admin nor a user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id string) (*Identity, error)
}

// Authenticator verifies the bearer token and resolves the caller exactly
// once per request. Role and state gates are separate middlewares.
func Authenticator(
	verifier TokenVerifier,
	resolver IdentityResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("Not authorized, no token"),
				)
				return
			}

			subject, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			identity, err := resolver.ResolveIdentity(r.Context(), subject)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(w, core.UnauthorizedError(""))
					return
				}
				core.InternalServerError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin passes admin identities only.
func RequireAdmin(next http.Handler) http.Handler {
	return requireIdentity(func(id *Identity) error {
		if !id.IsAdmin() {
			return core.ForbiddenError("Not authorized as admin")
		}
		return nil
	})(next)
}

// RequireUser passes any customer identity regardless of account state.
func RequireUser(next http.Handler) http.Handler {
	return requireIdentity(func(id *Identity) error {
		if !id.IsUser() {
			return core.ForbiddenError("Not authorized as user")
		}
		return nil
	})(next)
}

// RequireVerifiedUser passes customers that are active, paid and verified.
func RequireVerifiedUser(next http.Handler) http.Handler {
	return requireIdentity(func(id *Identity) error {
		if !id.IsUser() {
			return core.ForbiddenError("Not authorized as user")
		}
		return stateError(id.State.CheckAccess())
	})(next)
}

// RequireAdminOrActiveUser passes admins unconditionally and customers whose
// account is active. Remaining checks are left to the handler.
func RequireAdminOrActiveUser(next http.Handler) http.Handler {
	return requireIdentity(func(id *Identity) error {
		if id.IsAdmin() {
			return nil
		}
		return stateError(id.State.CheckActive())
	})(next)
}

// RequireAdminOrVerifiedUser guards the catalog: admins pass, customers must
// be active, paid and verified.
func RequireAdminOrVerifiedUser(next http.Handler) http.Handler {
	return requireIdentity(func(id *Identity) error {
		if id.IsAdmin() {
			return nil
		}
		return stateError(id.State.CheckAccess())
	})(next)
}

func requireIdentity(check func(*Identity) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}

			if err := check(identity); err != nil {
				core.JSONError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func stateError(err error) error {
	if err == nil {
		return nil
	}
	if appErr := core.StateError(err); appErr != nil {
		return appErr
	}
	return err
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	slog.Debug("token rejected", "error", err)

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetUserID(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.ID
	}
	return ""
}
