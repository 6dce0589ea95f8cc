package access

import "time"

// User is the persistence model for an account. Roles attach through the
// user_roles join table.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// Role is a named permission bundle. Names are unique; duplicate-name races
// are resolved by the database constraint.
type Role struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// Permission is an atomic capability identifier from the fixed catalog.
type Permission struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

type UserRole struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index:idx_user_roles_pair,unique"`
	RoleID    int64     `gorm:"column:role_id;not null;index:idx_user_roles_pair,unique"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

type RolePermission struct {
	ID           int64     `gorm:"primaryKey"`
	RoleID       int64     `gorm:"column:role_id;not null;index:idx_role_permissions_pair,unique"`
	PermissionID int64     `gorm:"column:permission_id;not null;index:idx_role_permissions_pair,unique"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}
