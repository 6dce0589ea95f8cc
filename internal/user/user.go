package user

import (
	"time"
)

// User is the account representation exposed by the user management API.
// Roles holds role names; Permissions is the deduplicated union resolved
// from those roles.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repository interface {
	List() ([]*User, error)
	GetByID(id int64) (*User, error)
	EmailExists(email string) (bool, error)
	Create(email, name, passwordHash string, roles []string) (*User, error)
	UpdateFields(id int64, updates map[string]interface{}) error
	ReplaceRoles(id int64, roles []string) error
	Delete(id int64) error
}
