package user

import (
	errors "github.com/erpcore/erp-api/internal"
	"github.com/erpcore/erp-api/internal/core/common/validation"
)

type CreateUserDTO struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (d *CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(8)
	v.Field("name", d.Name).MaxLength(120)
	return v.Validate()
}

type UsersResponse struct {
	Users []*User `json:"users"`
}

// UpdateUserDTO carries a partial update; nil fields are left untouched.
// A non-empty Roles list is only honored for super admin callers; an
// empty or absent list leaves role assignments alone.
type UpdateUserDTO struct {
	Name     *string  `json:"name,omitempty"`
	Password *string  `json:"password,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func (d *UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(8)
	}
	if d.Name != nil {
		v.Field("name", *d.Name).MaxLength(120)
	}
	return v.Validate()
}

// UpdateProfileDTO is the self-service subset of UpdateUserDTO: no role or
// activation changes.
type UpdateProfileDTO struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (d *UpdateProfileDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(8)
	}
	if d.Name != nil {
		v.Field("name", *d.Name).MaxLength(120)
	}
	return v.Validate()
}
