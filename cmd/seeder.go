package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erpcore/erp-api/internal/accesscontrol"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the permission catalog and default roles",
	Long:  `Seed the permission catalog, default roles and development users. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"user_roles", "role_permissions"} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared role assignments")
		}

		for _, name := range accesscontrol.PermissionList() {
			if _, err := db.Exec(
				"INSERT INTO permissions (name, created_at, updated_at) VALUES ($1, now(), now()) ON CONFLICT (name) DO NOTHING",
				name,
			); err != nil {
				log.Fatalf("failed to insert permission %s: %v", name, err)
			}
		}
		fmt.Println("Seeded permission catalog")

		for roleName, perms := range accesscontrol.RoleDefaults() {
			if _, err := db.Exec(
				"INSERT INTO roles (name, created_at, updated_at) VALUES ($1, now(), now()) ON CONFLICT (name) DO NOTHING",
				roleName,
			); err != nil {
				log.Fatalf("failed to insert role %s: %v", roleName, err)
			}

			var roleID int64
			if err := db.QueryRow("SELECT id FROM roles WHERE name = $1", roleName).Scan(&roleID); err != nil {
				log.Fatalf("failed to lookup role %s: %v", roleName, err)
			}

			for _, perm := range perms {
				var permID int64
				if err := db.QueryRow("SELECT id FROM permissions WHERE name = $1", perm).Scan(&permID); err != nil {
					log.Fatalf("permission not found %s: %v", perm, err)
				}
				if _, err := db.Exec(
					"INSERT INTO role_permissions (role_id, permission_id, created_at) VALUES ($1, $2, now()) ON CONFLICT DO NOTHING",
					roleID, permID,
				); err != nil {
					log.Fatalf("failed to grant %s to role %s: %v", perm, roleName, err)
				}
			}
			fmt.Printf("Seeded role: %s (%d permissions)\n", roleName, len(perms))
		}

		seedUser(db, "admin@example.com", "Admin", "password123", accesscontrol.SuperAdminRole)
		seedUser(db, "employee@example.com", "Employee", "password123", "employee")

		fmt.Println("Seeding completed")
	},
}

func seedUser(db *sqlx.DB, email, name, password, roleName string) {
	var userID int64
	err := db.QueryRow("SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	if err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password for %s: %v", email, err)
		}
		if err := db.QueryRow(
			"INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, $3, true, now(), now()) RETURNING id",
			email, name, string(hash),
		).Scan(&userID); err != nil {
			log.Fatalf("failed to insert user %s: %v", email, err)
		}
		fmt.Println("Seeded user:", email)
	}

	var roleID int64
	if err := db.QueryRow("SELECT id FROM roles WHERE name = $1", roleName).Scan(&roleID); err != nil {
		log.Fatalf("role not found %s: %v", roleName, err)
	}
	if _, err := db.Exec(
		"INSERT INTO user_roles (user_id, role_id, created_at) VALUES ($1, $2, now()) ON CONFLICT DO NOTHING",
		userID, roleID,
	); err != nil {
		log.Fatalf("failed to assign role %s to %s: %v", roleName, email, err)
	}
	fmt.Printf("Ensured role %s for %s\n", roleName, email)
}
