package accesscontrol

import "context"

// Identity is the authenticated principal attached to a request after the
// authentication pipeline resolves it. Recomputed fresh on every request;
// nothing is cached across requests.
type Identity struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *Identity) HasAnyRole(roles []string) bool {
	for _, required := range roles {
		if i.HasRole(required) {
			return true
		}
	}
	return false
}

func (i *Identity) HasPermission(permission string) bool {
	for _, p := range i.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (i *Identity) HasAnyPermission(permissions []string) bool {
	for _, required := range permissions {
		if i.HasPermission(required) {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the identity holds the reserved role.
func (i *Identity) IsSuperAdmin() bool {
	return IsSuperAdmin(i.Roles)
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in the request context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity placed by the auth middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok && id != nil
}
