package role

import (
	"log/slog"
	"strings"

	"github.com/erpcore/erp-api/internal/accesscontrol"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListRoles() ([]*Role, error) {
	roles, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}
	return roles, nil
}

// CreateRole finds or creates a role by name. The permission list only
// applies when the role is first created; repeated creates return the
// existing role unchanged. Unknown permission identifiers are dropped.
func (s *Service) CreateRole(dto *CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(dto.Name)
	perms := make([]string, 0, len(dto.Permissions))
	for _, p := range dto.Permissions {
		p = strings.TrimSpace(p)
		if p == "" || !accesscontrol.KnownPermission(p) {
			continue
		}
		perms = append(perms, p)
	}

	created, err := s.repo.Upsert(name, perms)
	if err != nil {
		s.logger.Error("failed to upsert role", "name", name, "error", err)
		return nil, err
	}

	s.logger.Info("role saved", "name", created.Name, "permissions", len(created.Permissions))
	return created, nil
}
