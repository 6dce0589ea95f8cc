package postgres

import (
	"strings"

	"gorm.io/gorm"

	errors "github.com/erpcore/erp-api/internal"
	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/core/datamodel/access"
	"github.com/erpcore/erp-api/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ user.Repository = (*Repository)(nil)

type grantRow struct {
	UserID         int64
	RoleName       string
	PermissionName *string
}

const grantQuery = `
	SELECT ur.user_id, r.name AS role_name, p.name AS permission_name
	FROM user_roles ur
	JOIN roles r ON r.id = ur.role_id
	LEFT JOIN role_permissions rp ON rp.role_id = r.id
	LEFT JOIN permissions p ON p.id = rp.permission_id
	WHERE ur.user_id IN ?
	ORDER BY ur.user_id, r.name`

func (r *Repository) List() ([]*user.User, error) {
	var records []access.User
	if err := r.db.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*user.User{}, nil
	}

	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	grants, err := r.loadGrants(ids)
	if err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(records))
	for i := range records {
		users = append(users, toDomain(&records[i], grants[records[i].ID]))
	}
	return users, nil
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var record access.User
	if err := r.db.First(&record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	grants, err := r.loadGrants([]int64{id})
	if err != nil {
		return nil, err
	}
	return toDomain(&record, grants[id]), nil
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&access.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Create inserts the user and attaches the requested roles, creating any
// role names that do not exist yet. A freshly created role carries no
// permissions until one is granted to it.
func (r *Repository) Create(email, name, passwordHash string, roles []string) (*user.User, error) {
	record := access.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return errors.ErrEmailInUse
			}
			return err
		}
		return attachRoles(tx, record.ID, roles)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(record.ID)
}

func (r *Repository) UpdateFields(id int64, updates map[string]interface{}) error {
	res := r.db.Model(&access.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) ReplaceRoles(id int64, roles []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&access.UserRole{}).Error; err != nil {
			return err
		}
		return attachRoles(tx, id, roles)
	})
}

func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&access.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&access.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrUserNotFound
		}
		return nil
	})
}

func (r *Repository) loadGrants(userIDs []int64) (map[int64][]accesscontrol.RoleGrant, error) {
	var rows []grantRow
	if err := r.db.Raw(grantQuery, userIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}

	grants := make(map[int64][]accesscontrol.RoleGrant)
	index := make(map[int64]map[string]int)
	for _, row := range rows {
		if index[row.UserID] == nil {
			index[row.UserID] = make(map[string]int)
		}
		pos, ok := index[row.UserID][row.RoleName]
		if !ok {
			grants[row.UserID] = append(grants[row.UserID], accesscontrol.RoleGrant{Name: row.RoleName})
			pos = len(grants[row.UserID]) - 1
			index[row.UserID][row.RoleName] = pos
		}
		if row.PermissionName != nil {
			grant := &grants[row.UserID][pos]
			grant.Permissions = append(grant.Permissions, *row.PermissionName)
		}
	}
	return grants, nil
}

func attachRoles(tx *gorm.DB, userID int64, roles []string) error {
	for _, name := range roles {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		err := tx.Exec(
			`INSERT INTO roles (name, created_at, updated_at) VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP) ON CONFLICT (name) DO NOTHING`,
			name,
		).Error
		if err != nil {
			return err
		}
		var role access.Role
		if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
			return err
		}
		if err := tx.Create(&access.UserRole{UserID: userID, RoleID: role.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}

func toDomain(rec *access.User, grants []accesscontrol.RoleGrant) *user.User {
	return &user.User{
		ID:          rec.ID,
		Email:       rec.Email,
		Name:        rec.Name,
		IsActive:    rec.IsActive,
		Roles:       accesscontrol.RoleNames(grants),
		Permissions: accesscontrol.ResolvePermissions(grants),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
