package user

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	errors "github.com/erpcore/erp-api/internal"
	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/core/events"
	"github.com/erpcore/erp-api/pkg/logger"
)

type Service struct {
	repo       Repository
	eventBus   *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
		logger:     logger.L(),
	}
}

func (s *Service) ListUsers() ([]*User, error) {
	return s.repo.List()
}

func (s *Service) GetUser(userID int64) (*User, error) {
	return s.repo.GetByID(userID)
}

func (s *Service) CreateUser(dto *CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := normalizeEmail(dto.Email)
	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(email, strings.TrimSpace(dto.Name), string(hash), dto.Roles)
	if err != nil {
		return nil, err
	}

	s.publish(events.NewUserCreatedEvent(u.ID, u.Email, u.Roles))
	s.logger.Info("user created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// UpdateProfile applies a self-service update for the authenticated user.
func (s *Service) UpdateProfile(userID int64, dto *UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return nil, errors.ErrNoUpdates
	}

	if err := s.repo.UpdateFields(userID, updates); err != nil {
		return nil, err
	}
	return s.repo.GetByID(userID)
}

// UpdateUser applies an administrative update. Role assignment is restricted
// to super admin callers regardless of granted permissions. An empty roles
// list is treated as "no role change", not as a request to clear them.
func (s *Service) UpdateUser(actor *accesscontrol.Identity, userID int64, dto *UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rolesRequested := len(dto.Roles) > 0
	if rolesRequested && !actor.IsSuperAdmin() {
		s.logger.Warn("role change rejected", "actor_id", actor.ID, "target_id", userID)
		return nil, errors.ErrRolesChangeDenied
	}

	if _, err := s.repo.GetByID(userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 && !rolesRequested {
		return nil, errors.ErrNoUpdates
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateFields(userID, updates); err != nil {
			return nil, err
		}
	}
	if rolesRequested {
		if err := s.repo.ReplaceRoles(userID, dto.Roles); err != nil {
			return nil, err
		}
		s.publish(events.NewRolesAssignedEvent(userID, dto.Roles, actor.ID))
	}

	return s.repo.GetByID(userID)
}

// DeleteUser removes an account. Callers cannot delete themselves.
func (s *Service) DeleteUser(actor *accesscontrol.Identity, userID int64) error {
	if actor.ID == userID {
		return errors.ErrSelfDelete
	}
	if err := s.repo.Delete(userID); err != nil {
		return err
	}
	s.publish(events.NewUserDeletedEvent(userID, actor.ID))
	s.logger.Info("user deleted", "user_id", userID, "deleted_by", actor.ID)
	return nil
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
