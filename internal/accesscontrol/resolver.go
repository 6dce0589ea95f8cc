package accesscontrol

// RoleGrant is an immutable snapshot of a role and the permission names
// attached to it, taken in one consistent read by the identity store.
type RoleGrant struct {
	Name        string
	Permissions []string
}

// ResolvePermissions computes the effective permission set for a set of role
// grants: the deduplicated union of every role's permissions, unless one of
// the roles is super_admin, in which case the full catalog replaces the
// union entirely (override, not merge).
//
// A user with zero roles resolves to an empty set. Callers must not depend
// on the ordering of the result.
func ResolvePermissions(roles []RoleGrant) []string {
	seen := make(map[string]struct{})
	effective := make([]string, 0, len(roles)*4)

	for _, role := range roles {
		if role.Name == SuperAdminRole {
			return PermissionList()
		}
		for _, perm := range role.Permissions {
			if perm == "" {
				continue
			}
			if _, ok := seen[perm]; ok {
				continue
			}
			seen[perm] = struct{}{}
			effective = append(effective, perm)
		}
	}

	return effective
}

// RoleNames extracts the role names from a set of grants.
func RoleNames(roles []RoleGrant) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names
}
