package auth_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/auth"
	"github.com/erpcore/erp-api/internal/core/events"
)

type mockRepository struct {
	usersByEmail map[string]*auth.UserAccess
	usersByID    map[int64]*auth.UserAccess
	roleIDs      map[string]int64
	roleTaken    map[int64]bool
	created      []*auth.UserAccess
	nextID       int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		usersByEmail: make(map[string]*auth.UserAccess),
		usersByID:    make(map[int64]*auth.UserAccess),
		roleIDs:      make(map[string]int64),
		roleTaken:    make(map[int64]bool),
		nextID:       1,
	}
}

func (m *mockRepository) add(u *auth.UserAccess) {
	m.usersByEmail[u.Email] = u
	m.usersByID[u.ID] = u
}

func (m *mockRepository) FindByEmail(email string) (*auth.UserAccess, error) {
	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepository) FindByID(userID int64) (*auth.UserAccess, error) {
	u, ok := m.usersByID[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepository) FindOrCreateRoleByName(name string) (int64, error) {
	if id, ok := m.roleIDs[name]; ok {
		return id, nil
	}
	m.nextID++
	m.roleIDs[name] = m.nextID
	return m.nextID, nil
}

func (m *mockRepository) RoleHasUsers(roleID int64) (bool, error) {
	return m.roleTaken[roleID], nil
}

func (m *mockRepository) CreateUser(email, name, passwordHash string, roleIDs []int64) (*auth.UserAccess, error) {
	if _, ok := m.usersByEmail[email]; ok {
		return nil, auth.ErrEmailInUse
	}
	m.nextID++
	u := &auth.UserAccess{
		ID:           m.nextID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
		Roles:        []accesscontrol.RoleGrant{{Name: accesscontrol.SuperAdminRole}},
	}
	m.add(u)
	m.created = append(m.created, u)
	return u, nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *mockRepository
		service *auth.Service
	)

	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		return string(h)
	}

	BeforeEach(func() {
		repo = newMockRepository()
		tokens := auth.NewJWTTokenGenerator("test-secret", 8*time.Hour)
		service = auth.NewService(repo, tokens, nil, bcrypt.MinCost)
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			repo.add(&auth.UserAccess{
				ID:           10,
				Email:        "manager@example.com",
				PasswordHash: hash("correct-horse"),
				IsActive:     true,
				Roles: []accesscontrol.RoleGrant{
					{Name: "manager", Permissions: []string{accesscontrol.PermUsersView}},
				},
			})
		})

		It("returns a token and resolved identity for valid credentials", func() {
			token, identity, err := service.Authenticate(auth.LoginDTO{
				Email:    "manager@example.com",
				Password: "correct-horse",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())
			Expect(identity.ID).To(Equal(int64(10)))
			Expect(identity.Roles).To(ConsistOf("manager"))
			Expect(identity.Permissions).To(ConsistOf(accesscontrol.PermUsersView))
		})

		It("normalizes the email before lookup", func() {
			_, identity, err := service.Authenticate(auth.LoginDTO{
				Email:    "  Manager@Example.COM ",
				Password: "correct-horse",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(identity.Email).To(Equal("manager@example.com"))
		})

		It("rejects a wrong password with ErrInvalidCredentials", func() {
			_, _, err := service.Authenticate(auth.LoginDTO{
				Email:    "manager@example.com",
				Password: "wrong",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email with ErrInvalidCredentials", func() {
			_, _, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@example.com",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects a deactivated account with ErrInvalidCredentials", func() {
			repo.add(&auth.UserAccess{
				ID:           11,
				Email:        "gone@example.com",
				PasswordHash: hash("correct-horse"),
				IsActive:     false,
			})

			_, _, err := service.Authenticate(auth.LoginDTO{
				Email:    "gone@example.com",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects missing fields with a validation error", func() {
			_, _, err := service.Authenticate(auth.LoginDTO{Email: "manager@example.com"})
			Expect(err).To(HaveOccurred())
			Expect(err).NotTo(MatchError(auth.ErrInvalidCredentials))
		})

		It("surfaces a missing signing secret instead of folding it into 401", func() {
			service = auth.NewService(repo, auth.NewJWTTokenGenerator("", time.Hour), nil, bcrypt.MinCost)

			_, _, err := service.Authenticate(auth.LoginDTO{
				Email:    "manager@example.com",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrSecretMissing))
		})
	})

	Describe("IdentityFromToken", func() {
		var token string

		BeforeEach(func() {
			repo.add(&auth.UserAccess{
				ID:           10,
				Email:        "manager@example.com",
				PasswordHash: hash("correct-horse"),
				IsActive:     true,
				Roles: []accesscontrol.RoleGrant{
					{Name: "manager", Permissions: []string{accesscontrol.PermUsersView}},
				},
			})

			var err error
			token, _, err = service.Authenticate(auth.LoginDTO{
				Email:    "manager@example.com",
				Password: "correct-horse",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("re-resolves the identity from the store", func() {
			identity, err := service.IdentityFromToken(token)

			Expect(err).NotTo(HaveOccurred())
			Expect(identity.ID).To(Equal(int64(10)))
			Expect(identity.Permissions).To(ConsistOf(accesscontrol.PermUsersView))
		})

		It("reflects role changes made after the token was issued", func() {
			repo.usersByID[10].Roles = []accesscontrol.RoleGrant{
				{Name: accesscontrol.SuperAdminRole},
			}

			identity, err := service.IdentityFromToken(token)

			Expect(err).NotTo(HaveOccurred())
			Expect(identity.IsSuperAdmin()).To(BeTrue())
			Expect(identity.Permissions).To(ConsistOf(accesscontrol.PermissionList()))
		})

		It("rejects a token whose subject no longer exists", func() {
			delete(repo.usersByID, 10)

			_, err := service.IdentityFromToken(token)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects a token whose subject was deactivated", func() {
			repo.usersByID[10].IsActive = false

			_, err := service.IdentityFromToken(token)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects garbage tokens", func() {
			_, err := service.IdentityFromToken("garbage")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("CreateSuperAdmin", func() {
		It("creates the first super admin with the reserved role", func() {
			identity, err := service.CreateSuperAdmin(auth.CreateSuperAdminDTO{
				Email:    "root@example.com",
				Name:     "Root",
				Password: "bootstrap-pass",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(identity.IsSuperAdmin()).To(BeTrue())
			Expect(repo.created).To(HaveLen(1))
		})

		It("refuses to run once a super admin exists", func() {
			roleID, err := repo.FindOrCreateRoleByName(accesscontrol.SuperAdminRole)
			Expect(err).NotTo(HaveOccurred())
			repo.roleTaken[roleID] = true

			_, err = service.CreateSuperAdmin(auth.CreateSuperAdminDTO{
				Email:    "root@example.com",
				Password: "bootstrap-pass",
			})
			Expect(err).To(MatchError(auth.ErrSuperAdminExists))
		})

		It("propagates a duplicate email conflict", func() {
			repo.add(&auth.UserAccess{ID: 5, Email: "root@example.com", IsActive: true})

			_, err := service.CreateSuperAdmin(auth.CreateSuperAdminDTO{
				Email:    "root@example.com",
				Password: "bootstrap-pass",
			})
			Expect(err).To(MatchError(auth.ErrEmailInUse))
		})
	})

	Describe("event publication", func() {
		var received chan events.Event

		subscribe := func(eventType string) *events.EventBus {
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			bus := events.NewEventBus(slogger)
			bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
				received <- event
				return nil
			})
			return bus
		}

		BeforeEach(func() {
			received = make(chan events.Event, 1)
		})

		It("publishes a login succeeded event after authentication", func() {
			repo.add(&auth.UserAccess{
				ID:           10,
				Email:        "manager@example.com",
				PasswordHash: hash("correct-horse"),
				IsActive:     true,
			})
			bus := subscribe(events.EventTypeLoginSucceeded)
			service = auth.NewService(repo, auth.NewJWTTokenGenerator("test-secret", 8*time.Hour), bus, bcrypt.MinCost)

			_, _, err := service.Authenticate(auth.LoginDTO{
				Email:    "manager@example.com",
				Password: "correct-horse",
			})
			Expect(err).NotTo(HaveOccurred())

			var event events.Event
			Eventually(received).Should(Receive(&event))
			login, ok := event.(*events.LoginSucceededEvent)
			Expect(ok).To(BeTrue())
			Expect(login.UserID).To(Equal(int64(10)))
			Expect(login.Email).To(Equal("manager@example.com"))
		})

		It("does not publish when authentication fails", func() {
			bus := subscribe(events.EventTypeLoginSucceeded)
			service = auth.NewService(repo, auth.NewJWTTokenGenerator("test-secret", 8*time.Hour), bus, bcrypt.MinCost)

			_, _, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@example.com",
				Password: "wrong",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
			Consistently(received).ShouldNot(Receive())
		})

		It("publishes a super admin created event on bootstrap", func() {
			bus := subscribe(events.EventTypeSuperAdminCreated)
			service = auth.NewService(repo, auth.NewJWTTokenGenerator("test-secret", 8*time.Hour), bus, bcrypt.MinCost)

			_, err := service.CreateSuperAdmin(auth.CreateSuperAdminDTO{
				Email:    "root@example.com",
				Name:     "Root",
				Password: "bootstrap-pass",
			})
			Expect(err).NotTo(HaveOccurred())

			var event events.Event
			Eventually(received).Should(Receive(&event))
			created, ok := event.(*events.SuperAdminCreatedEvent)
			Expect(ok).To(BeTrue())
			Expect(created.Email).To(Equal("root@example.com"))
		})
	})
})
