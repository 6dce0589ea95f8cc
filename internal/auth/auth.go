package auth

import (
	"errors"

	"github.com/erpcore/erp-api/internal/accesscontrol"
)

// UserAccess is a hydrated snapshot of a user with roles and each role's
// permissions, produced by one consistent repository read. The resolver
// never sees partially loaded data.
type UserAccess struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	Roles        []accesscontrol.RoleGrant
}

// Repository is the identity store contract the authentication pipeline
// depends on. Find methods return the user fully hydrated.
type Repository interface {
	FindByEmail(email string) (*UserAccess, error)
	FindByID(userID int64) (*UserAccess, error)
	FindOrCreateRoleByName(name string) (int64, error)
	RoleHasUsers(roleID int64) (bool, error)
	CreateUser(email, name, passwordHash string, roleIDs []int64) (*UserAccess, error)
}

// TokenGenerator issues and verifies session credentials.
type TokenGenerator interface {
	Issue(userID string) (string, error)
	Verify(tokenString string) (*Claims, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSecretMissing      = errors.New("jwt secret not configured")
	ErrEmailInUse         = errors.New("email already in use")
	ErrSuperAdminExists   = errors.New("super admin already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// IdentityOf converts a hydrated snapshot into the request identity,
// resolving the effective permission set.
func IdentityOf(u *UserAccess) *accesscontrol.Identity {
	return &accesscontrol.Identity{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Roles:       accesscontrol.RoleNames(u.Roles),
		Permissions: accesscontrol.ResolvePermissions(u.Roles),
	}
}
