package postgres

import (
	"database/sql"
	"strings"

	"gorm.io/gorm"

	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/auth"
	"github.com/erpcore/erp-api/internal/core/datamodel/access"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByEmail(email string) (*auth.UserAccess, error) {
	return r.findUser("email = ?", email)
}

func (r *Repository) FindByID(userID int64) (*auth.UserAccess, error) {
	return r.findUser("id = ?", userID)
}

// findUser loads the account row and then the full role/permission graph in
// one join, so the caller always sees a consistent snapshot.
func (r *Repository) findUser(where string, arg interface{}) (*auth.UserAccess, error) {
	var user auth.UserAccess

	query := `SELECT id, email, name, password_hash, is_active FROM users WHERE ` + where
	row := r.db.Raw(query, arg).Row()
	var name sql.NullString
	if err := row.Scan(&user.ID, &user.Email, &name, &user.PasswordHash, &user.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	user.Name = name.String

	roles, err := r.loadRoleGrants(user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return &user, nil
}

func (r *Repository) loadRoleGrants(userID int64) ([]accesscontrol.RoleGrant, error) {
	query := `SELECT r.name AS role_name, p.name AS permission_name
	          FROM user_roles ur
	          JOIN roles r ON r.id = ur.role_id
	          LEFT JOIN role_permissions rp ON rp.role_id = r.id
	          LEFT JOIN permissions p ON p.id = rp.permission_id
	          WHERE ur.user_id = ?
	          ORDER BY r.name`

	rows, err := r.db.Raw(query, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := make([]accesscontrol.RoleGrant, 0, 4)
	index := make(map[string]int)
	for rows.Next() {
		var roleName string
		var permName sql.NullString
		if err := rows.Scan(&roleName, &permName); err != nil {
			return nil, err
		}

		i, ok := index[roleName]
		if !ok {
			grants = append(grants, accesscontrol.RoleGrant{Name: roleName})
			i = len(grants) - 1
			index[roleName] = i
		}
		if permName.Valid {
			grants[i].Permissions = append(grants[i].Permissions, permName.String)
		}
	}
	return grants, rows.Err()
}

// FindOrCreateRoleByName upserts a role by name. Concurrent duplicate-name
// creation is resolved by the unique constraint: the losing insert is a
// no-op and both callers read back the same row.
func (r *Repository) FindOrCreateRoleByName(name string) (int64, error) {
	insert := `INSERT INTO roles (name, created_at, updated_at)
	           VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           ON CONFLICT (name) DO NOTHING`
	if err := r.db.Exec(insert, name).Error; err != nil {
		return 0, err
	}

	var roleID int64
	row := r.db.Raw(`SELECT id FROM roles WHERE name = ?`, name).Row()
	if err := row.Scan(&roleID); err != nil {
		return 0, err
	}
	return roleID, nil
}

func (r *Repository) RoleHasUsers(roleID int64) (bool, error) {
	var count int64
	row := r.db.Raw(`SELECT COUNT(1) FROM user_roles WHERE role_id = ?`, roleID).Row()
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateUser(email, name, passwordHash string, roleIDs []int64) (*auth.UserAccess, error) {
	record := &access.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			if isUniqueViolation(err) {
				return auth.ErrEmailInUse
			}
			return err
		}
		for _, roleID := range roleIDs {
			link := &access.UserRole{UserID: record.ID, RoleID: roleID}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(record.ID)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

var _ auth.Repository = (*Repository)(nil)
