package accesscontrol_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/erpcore/erp-api/internal/accesscontrol"
)

var _ = Describe("Gate Middleware", func() {
	var (
		gate    accesscontrol.Gate
		handler http.Handler
		called  bool
	)

	BeforeEach(func() {
		gate = accesscontrol.Gate{
			Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
		}
		called = false
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(mw func(http.Handler) http.Handler, identity *accesscontrol.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if identity != nil {
			req = req.WithContext(accesscontrol.ContextWithIdentity(req.Context(), identity))
		}
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, req)
		return rec
	}

	Describe("RequireAnyPermission", func() {
		It("rejects requests without an identity", func() {
			rec := serve(gate.RequireAnyPermission(accesscontrol.PermUsersView), nil)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(called).To(BeFalse())
		})

		It("allows an identity holding one of the required permissions", func() {
			identity := &accesscontrol.Identity{
				ID:          1,
				Roles:       []string{"manager"},
				Permissions: []string{accesscontrol.PermUsersView},
			}

			rec := serve(gate.RequireAnyPermission(accesscontrol.PermUsersEdit, accesscontrol.PermUsersView), identity)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(called).To(BeTrue())
		})

		It("rejects an identity with none of the required permissions", func() {
			identity := &accesscontrol.Identity{
				ID:          1,
				Roles:       []string{"employee"},
				Permissions: []string{accesscontrol.PermProfileView},
			}

			rec := serve(gate.RequireAnyPermission(accesscontrol.PermUsersDelete), identity)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(called).To(BeFalse())
		})

		It("lets super admins through regardless of granted permissions", func() {
			identity := &accesscontrol.Identity{
				ID:    1,
				Roles: []string{accesscontrol.SuperAdminRole},
			}

			rec := serve(gate.RequireAnyPermission(accesscontrol.PermAccountsManage), identity)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(called).To(BeTrue())
		})

		It("treats an empty requirement as authenticated-only", func() {
			identity := &accesscontrol.Identity{ID: 1, Roles: []string{"employee"}}

			rec := serve(gate.RequireAnyPermission(), identity)

			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("RequireAnyRole", func() {
		It("allows an identity holding one of the allowed roles", func() {
			identity := &accesscontrol.Identity{ID: 1, Roles: []string{"accountant"}}

			rec := serve(gate.RequireAnyRole("admin", "accountant"), identity)

			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("rejects an identity outside the allowed roles", func() {
			identity := &accesscontrol.Identity{ID: 1, Roles: []string{"employee"}}

			rec := serve(gate.RequireAnyRole("admin"), identity)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("lets super admins through without the listed role", func() {
			identity := &accesscontrol.Identity{ID: 1, Roles: []string{accesscontrol.SuperAdminRole}}

			rec := serve(gate.RequireAnyRole("admin"), identity)

			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})
})
