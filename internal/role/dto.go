package role

import (
	errors "github.com/erpcore/erp-api/internal"
	"github.com/erpcore/erp-api/internal/core/common/validation"
)

type CreateRoleDTO struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

func (d *CreateRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(60)
	return v.Validate()
}
