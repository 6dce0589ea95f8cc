package auth

import "github.com/erpcore/erp-api/internal/accesscontrol"

// LoginDTO is the transport shape used by the HTTP handler to accept login
// requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateSuperAdminDTO bootstraps the very first privileged account.
type CreateSuperAdminDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginResponse is what a successful login returns.
type LoginResponse struct {
	Token string                  `json:"token"`
	User  *accesscontrol.Identity `json:"user"`
}

// MeResponse wraps the resolved request identity.
type MeResponse struct {
	User *accesscontrol.Identity `json:"user"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" || d.Password == "" {
		return ValidationError{Msg: "email and password are required"}
	}
	return nil
}

func (d CreateSuperAdminDTO) Validate() error {
	if d.Email == "" || d.Password == "" {
		return ValidationError{Msg: "email and password are required"}
	}
	return nil
}
