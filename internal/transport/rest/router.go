package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/auth"
	"github.com/erpcore/erp-api/internal/dashboard"
	"github.com/erpcore/erp-api/internal/role"
	"github.com/erpcore/erp-api/internal/transport/middleware"
	"github.com/erpcore/erp-api/internal/transport/swagger"
	"github.com/erpcore/erp-api/internal/user"
)

// RegisterAllRoutes wires the HTTP surface. Everything under /api/v1 except
// health, login and super admin bootstrap sits behind the auth middleware,
// with role and permission gates applied per route group.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, roleHandler *role.Handler, dashboardHandler *dashboard.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	gate := &accesscontrol.Gate{Logger: logger}

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/super-admin", authHandler.CreateSuperAdmin)

				sr.Group(func(ar chi.Router) {
					ar.Use(authHandler.Middleware)
					ar.Get("/me", authHandler.Me)
				})
			})
		}

		if authHandler == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.Middleware)

			if userHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Group(func(gr chi.Router) {
						gr.Use(gate.RequireAnyPermission(accesscontrol.PermUsersView))
						gr.Get("/", userHandler.ListUsers)
					})
					ur.Group(func(gr chi.Router) {
						gr.Use(gate.RequireAnyPermission(accesscontrol.PermUsersCreate))
						gr.Post("/", userHandler.CreateUser)
					})
					ur.Group(func(gr chi.Router) {
						gr.Use(gate.RequireAnyPermission(accesscontrol.PermProfileEdit))
						gr.Patch("/me", userHandler.UpdateMe)
					})
					ur.Group(func(gr chi.Router) {
						gr.Use(gate.RequireAnyPermission(accesscontrol.PermUsersEdit))
						gr.Patch("/{id}", userHandler.UpdateUser)
					})
					ur.Group(func(gr chi.Router) {
						gr.Use(gate.RequireAnyPermission(accesscontrol.PermUsersDelete))
						gr.Delete("/{id}", userHandler.DeleteUser)
					})
				})
			}

			if roleHandler != nil {
				pr.Route("/roles", func(rr chi.Router) {
					rr.Group(func(gr chi.Router) {
						gr.Use(gate.RequireAnyPermission(
							accesscontrol.PermRolesCreate,
							accesscontrol.PermRolesEdit,
							accesscontrol.PermRolesDelete,
						))
						gr.Get("/", roleHandler.ListRoles)
					})
					rr.Group(func(gr chi.Router) {
						gr.Use(gate.RequireAnyPermission(accesscontrol.PermRolesCreate))
						gr.Post("/", roleHandler.CreateRole)
					})
				})
			}

			if dashboardHandler != nil {
				pr.Group(func(gr chi.Router) {
					gr.Use(gate.RequireAnyPermission(accesscontrol.PermDashboardAccess))
					gr.Get("/dashboard/summary", dashboardHandler.GetSummary)
				})
			}
		})
	})
}
