package accesscontrol

// SuperAdminRole is the reserved role name that bypasses every gate. All
// bypass checks go through IsSuperAdmin so the override exists in one place.
const SuperAdminRole = "super_admin"

// Permission identifiers. The catalog is closed: these are the only valid
// values and no two entries share a name.
const (
	PermUsersCreate     = "users:create"
	PermUsersEdit       = "users:edit"
	PermUsersDelete     = "users:delete"
	PermUsersView       = "users:view"
	PermRolesCreate     = "roles:create"
	PermRolesEdit       = "roles:edit"
	PermRolesDelete     = "roles:delete"
	PermInventoryManage = "inventory:manage"
	PermSalesManage     = "sales:manage"
	PermAccountsManage  = "accounts:manage"
	PermReportsView     = "reports:view"
	PermSettingsAccess  = "settings:access"
	PermDashboardAccess = "dashboard:access"
	PermProfileView     = "profile:view"
	PermProfileEdit     = "profile:edit"
)

var permissionList = []string{
	PermUsersCreate,
	PermUsersEdit,
	PermUsersDelete,
	PermUsersView,
	PermRolesCreate,
	PermRolesEdit,
	PermRolesDelete,
	PermInventoryManage,
	PermSalesManage,
	PermAccountsManage,
	PermReportsView,
	PermSettingsAccess,
	PermDashboardAccess,
	PermProfileView,
	PermProfileEdit,
}

// PermissionList returns the complete ordered catalog. Callers get a copy;
// the catalog itself is immutable.
func PermissionList() []string {
	out := make([]string, len(permissionList))
	copy(out, permissionList)
	return out
}

// KnownPermission reports whether name is part of the catalog.
func KnownPermission(name string) bool {
	for _, p := range permissionList {
		if p == name {
			return true
		}
	}
	return false
}

// RoleDefaults maps each built-in role name to the permission set it is
// provisioned with. Used by the seeder only; resolution never consults this
// table, it reads the role's persisted permissions.
func RoleDefaults() map[string][]string {
	return map[string][]string{
		SuperAdminRole: PermissionList(),
		"admin": {
			PermUsersCreate, PermUsersEdit, PermUsersDelete, PermUsersView,
			PermRolesCreate, PermRolesEdit, PermRolesDelete,
			PermSettingsAccess, PermDashboardAccess,
			PermProfileView, PermProfileEdit,
		},
		"manager": {
			PermInventoryManage, PermSalesManage, PermReportsView,
			PermDashboardAccess, PermProfileView, PermProfileEdit,
		},
		"accountant": {
			PermAccountsManage, PermReportsView,
			PermDashboardAccess, PermProfileView, PermProfileEdit,
		},
		"employee": {
			PermDashboardAccess, PermProfileView, PermProfileEdit,
		},
	}
}

// IsSuperAdmin is the single bypass predicate shared by the role gate, the
// permission gate and the resolver.
func IsSuperAdmin(roles []string) bool {
	for _, r := range roles {
		if r == SuperAdminRole {
			return true
		}
	}
	return false
}
