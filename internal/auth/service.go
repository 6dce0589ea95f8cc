package auth

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/core/events"
	"github.com/erpcore/erp-api/pkg/logger"
)

// Service is the main auth service with dependencies.
type Service struct {
	repo       Repository
	tokens     TokenGenerator
	eventBus   *events.EventBus
	bcryptCost int
}

// NewService creates a new auth service.
func NewService(repo Repository, tokens TokenGenerator, eventBus *events.EventBus, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
	}
}

// Authenticate validates credentials and returns a session token together
// with the resolved identity. Unknown email, wrong password and a disabled
// account all fail with ErrInvalidCredentials; only a missing signing
// secret is distinguishable (it is an operator problem, not a caller one).
func (s *Service) Authenticate(dto LoginDTO) (string, *accesscontrol.Identity, error) {
	if err := dto.Validate(); err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByEmail(NormalizeEmail(dto.Email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return "", nil, err
	}

	s.publish(events.NewLoginSucceededEvent(user.ID, user.Email))
	return token, IdentityOf(user), nil
}

// IdentityFromToken verifies a bearer token and re-resolves the subject's
// identity from the store. A valid token whose subject is missing or
// deactivated fails the same way a forged token does.
func (s *Service) IdentityFromToken(tokenString string) (*accesscontrol.Identity, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	return IdentityOf(user), nil
}

// CreateSuperAdmin provisions the first super admin account. It refuses to
// run once any user holds the reserved role.
func (s *Service) CreateSuperAdmin(dto CreateSuperAdminDTO) (*accesscontrol.Identity, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	roleID, err := s.repo.FindOrCreateRoleByName(accesscontrol.SuperAdminRole)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.RoleHasUsers(roleID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSuperAdminExists
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(NormalizeEmail(dto.Email), strings.TrimSpace(dto.Name), hash, []int64{roleID})
	if err != nil {
		return nil, err
	}

	s.publish(events.NewSuperAdminCreatedEvent(user.ID, user.Email))
	return IdentityOf(user), nil
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		logger.L().Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NormalizeEmail lowercases and trims an address so lookups and uniqueness
// agree on one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
