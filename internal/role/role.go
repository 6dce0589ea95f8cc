package role

import (
	"time"
)

// Role pairs a role name with the permission identifiers granted to it.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RepositoryAPI interface {
	GetAll() ([]*Role, error)
	GetByName(name string) (*Role, error)
	Upsert(name string, permissions []string) (*Role, error)
}
