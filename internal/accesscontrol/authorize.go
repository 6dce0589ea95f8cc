package accesscontrol

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Gate produces the authorization middleware guarding protected routes.
// Both gate flavors use disjunction: a request passes when it holds ANY of
// the listed roles or permissions, and an empty requirement means
// "authenticated only". Super admins bypass every gate.
type Gate struct {
	Logger *slog.Logger
}

// RequireAnyRole allows the request through when the identity holds at
// least one of the allowed roles.
func (g Gate) RequireAnyRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeGateError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if identity.IsSuperAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			if len(allowed) == 0 || identity.HasAnyRole(allowed) {
				next.ServeHTTP(w, r)
				return
			}

			if g.Logger != nil {
				g.Logger.Warn("access denied: role requirement not met",
					"user_id", identity.ID,
					"required_roles", allowed,
					"user_roles", identity.Roles)
			}
			writeGateError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// RequireAnyPermission allows the request through when the identity's
// effective permission set contains at least one of the required
// permissions.
func (g Gate) RequireAnyPermission(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeGateError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if identity.IsSuperAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			if len(required) == 0 || identity.HasAnyPermission(required) {
				next.ServeHTTP(w, r)
				return
			}

			if g.Logger != nil {
				g.Logger.Warn("access denied: insufficient permissions",
					"user_id", identity.ID,
					"required_permissions", required,
					"user_permissions", identity.Permissions)
			}
			writeGateError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

func writeGateError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    status,
		"message": message,
	})
}
