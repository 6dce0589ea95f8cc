package postgres

import (
	"gorm.io/gorm"

	"github.com/erpcore/erp-api/internal/core/datamodel/access"
	"github.com/erpcore/erp-api/internal/role"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

type permissionRow struct {
	RoleID int64
	Name   string
}

func (r *RoleRepository) GetAll() ([]*role.Role, error) {
	var records []access.Role
	if err := r.db.Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	var rows []permissionRow
	err := r.db.Raw(`
		SELECT rp.role_id, p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		ORDER BY p.name`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byRole := make(map[int64][]string)
	for _, row := range rows {
		byRole[row.RoleID] = append(byRole[row.RoleID], row.Name)
	}

	roles := make([]*role.Role, 0, len(records))
	for i := range records {
		roles = append(roles, toDomain(&records[i], byRole[records[i].ID]))
	}
	return roles, nil
}

func (r *RoleRepository) GetByName(name string) (*role.Role, error) {
	var record access.Role
	err := r.db.Where("name = ?", name).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	perms, err := r.permissionNames(record.ID)
	if err != nil {
		return nil, err
	}
	return toDomain(&record, perms), nil
}

// Upsert finds the role by name, creating it when missing. The permission
// list only applies on first creation; an existing role comes back
// untouched, grants included. Duplicate-name races are resolved by the
// unique constraint: the losing insert is a no-op and reads back the
// winner's row.
func (r *RoleRepository) Upsert(name string, permissions []string) (*role.Role, error) {
	var record access.Role
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO roles (name, created_at, updated_at) VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP) ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("name = ?", name).First(&record).Error; err != nil {
			return err
		}

		created := res.RowsAffected == 1
		if !created || len(permissions) == 0 {
			return nil
		}

		var permRecords []access.Permission
		if err := tx.Where("name IN ?", permissions).Find(&permRecords).Error; err != nil {
			return err
		}
		for _, p := range permRecords {
			if err := tx.Create(&access.RolePermission{RoleID: record.ID, PermissionID: p.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	perms, err := r.permissionNames(record.ID)
	if err != nil {
		return nil, err
	}
	return toDomain(&record, perms), nil
}

func (r *RoleRepository) permissionNames(roleID int64) ([]string, error) {
	var names []string
	err := r.db.Raw(`
		SELECT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = ?
		ORDER BY p.name`, roleID).Scan(&names).Error
	return names, err
}

func toDomain(rec *access.Role, permissions []string) *role.Role {
	if permissions == nil {
		permissions = []string{}
	}
	return &role.Role{
		ID:          rec.ID,
		Name:        rec.Name,
		Permissions: permissions,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
