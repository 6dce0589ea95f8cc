package user_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/core/datamodel/access"
	"github.com/erpcore/erp-api/internal/user"
	userPostgres "github.com/erpcore/erp-api/internal/user/postgres"
)

var _ = Describe("User Handler Integration", func() {
	var (
		db      *gorm.DB
		service *user.Service
		handler *user.Handler
		router  *chi.Mux
		actor   *accesscontrol.Identity
	)

	seedRole := func(name string, perms ...string) {
		role := access.Role{Name: name}
		Expect(db.Where("name = ?", name).FirstOrCreate(&role).Error).NotTo(HaveOccurred())
		for _, permName := range perms {
			perm := access.Permission{Name: permName}
			Expect(db.Where("name = ?", permName).FirstOrCreate(&perm).Error).NotTo(HaveOccurred())
			Expect(db.Create(&access.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error).NotTo(HaveOccurred())
		}
	}

	seedUser := func(email string, roles ...string) int64 {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		record := access.User{Email: email, Name: "Seeded", PasswordHash: string(hash), IsActive: true}
		Expect(db.Create(&record).Error).NotTo(HaveOccurred())

		for _, roleName := range roles {
			role := access.Role{Name: roleName}
			Expect(db.Where("name = ?", roleName).FirstOrCreate(&role).Error).NotTo(HaveOccurred())
			Expect(db.Create(&access.UserRole{UserID: record.ID, RoleID: role.ID}).Error).NotTo(HaveOccurred())
		}
		return record.ID
	}

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader *strings.Reader
		if body == "" {
			reader = strings.NewReader("{}")
		} else {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req = req.WithContext(accesscontrol.ContextWithIdentity(req.Context(), actor))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&access.User{},
			&access.Role{},
			&access.Permission{},
			&access.UserRole{},
			&access.RolePermission{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo := userPostgres.NewRepository(db)
		service = user.NewService(repo, nil, bcrypt.MinCost)
		handler = user.NewHandler(service)

		router = chi.NewRouter()
		router.Get("/users", handler.ListUsers)
		router.Post("/users", handler.CreateUser)
		router.Patch("/users/me", handler.UpdateMe)
		router.Patch("/users/{id}", handler.UpdateUser)
		router.Delete("/users/{id}", handler.DeleteUser)

		actor = &accesscontrol.Identity{
			ID:          999,
			Email:       "admin@example.com",
			Roles:       []string{"admin"},
			Permissions: accesscontrol.PermissionList(),
		}
	})

	Describe("POST /users", func() {
		BeforeEach(func() {
			seedRole("employee", accesscontrol.PermProfileView, accesscontrol.PermProfileEdit)
		})

		It("creates a user and resolves role permissions", func() {
			rec := do(http.MethodPost, "/users",
				`{"email":"new@example.com","name":"New","password":"password123","roles":["employee"]}`)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created user.User
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
			Expect(created.Roles).To(ConsistOf("employee"))
			Expect(created.Permissions).To(ConsistOf(
				accesscontrol.PermProfileView,
				accesscontrol.PermProfileEdit,
			))
		})

		It("creates roles that do not exist yet", func() {
			rec := do(http.MethodPost, "/users",
				`{"email":"new@example.com","password":"password123","roles":["employee","contractor"]}`)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created user.User
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
			Expect(created.Roles).To(ConsistOf("employee", "contractor"))
			Expect(created.Permissions).To(ConsistOf(
				accesscontrol.PermProfileView,
				accesscontrol.PermProfileEdit,
			))

			var count int64
			Expect(db.Model(&access.Role{}).Where("name = ?", "contractor").Count(&count).Error).
				NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("conflicts on a duplicate email", func() {
			seedUser("new@example.com")

			rec := do(http.MethodPost, "/users",
				`{"email":"new@example.com","password":"password123"}`)
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("rejects invalid payloads", func() {
			rec := do(http.MethodPost, "/users", `{"email":"not-an-email","password":"password123"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /users", func() {
		It("lists users with their roles", func() {
			seedRole("manager", accesscontrol.PermUsersView)
			seedUser("a@example.com", "manager")
			seedUser("b@example.com")

			rec := do(http.MethodGet, "/users", "")

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp user.UsersResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Users).To(HaveLen(2))
		})

		It("returns an empty users envelope when no users exist", func() {
			rec := do(http.MethodGet, "/users", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(rec.Body.String())).To(Equal(`{"users":[]}`))
		})
	})

	Describe("PATCH /users/me", func() {
		It("updates the caller's own profile", func() {
			id := seedUser("self@example.com")
			actor.ID = id

			rec := do(http.MethodPatch, "/users/me", `{"name":"Renamed"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var updated user.User
			Expect(json.Unmarshal(rec.Body.Bytes(), &updated)).To(Succeed())
			Expect(updated.Name).To(Equal("Renamed"))
		})

		It("rejects an empty update", func() {
			actor.ID = seedUser("self@example.com")

			rec := do(http.MethodPatch, "/users/me", `{}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("PATCH /users/{id}", func() {
		It("denies role reassignment for non-super-admin callers", func() {
			id := seedUser("target@example.com")
			seedRole("manager")

			rec := do(http.MethodPatch, fmt.Sprintf("/users/%d", id), `{"roles":["manager"]}`)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("treats an empty roles array as no role change", func() {
			id := seedUser("target@example.com", "employee")

			rec := do(http.MethodPatch, fmt.Sprintf("/users/%d", id), `{"name":"Renamed","roles":[]}`)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var updated user.User
			Expect(json.Unmarshal(rec.Body.Bytes(), &updated)).To(Succeed())
			Expect(updated.Name).To(Equal("Renamed"))
			Expect(updated.Roles).To(ConsistOf("employee"))
		})

		It("lets a super admin reassign roles", func() {
			id := seedUser("target@example.com", "employee")
			seedRole("manager", accesscontrol.PermUsersView)
			actor.Roles = []string{accesscontrol.SuperAdminRole}

			rec := do(http.MethodPatch, fmt.Sprintf("/users/%d", id), `{"roles":["manager"]}`)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var updated user.User
			Expect(json.Unmarshal(rec.Body.Bytes(), &updated)).To(Succeed())
			Expect(updated.Roles).To(ConsistOf("manager"))
			Expect(updated.Permissions).To(ConsistOf(accesscontrol.PermUsersView))
		})

		It("returns 404 for an unknown user", func() {
			rec := do(http.MethodPatch, "/users/424242", `{"name":"X"}`)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric id", func() {
			rec := do(http.MethodPatch, "/users/abc", `{"name":"X"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DELETE /users/{id}", func() {
		It("deletes another user", func() {
			id := seedUser("target@example.com")

			rec := do(http.MethodDelete, fmt.Sprintf("/users/%d", id), "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var count int64
			Expect(db.Model(&access.User{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("refuses self-deletion", func() {
			id := seedUser("admin@example.com")
			actor.ID = id

			rec := do(http.MethodDelete, fmt.Sprintf("/users/%d", id), "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown user", func() {
			rec := do(http.MethodDelete, "/users/424242", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
