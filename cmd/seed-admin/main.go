// seed-admin creates the first administrator, or promotes and re-activates an existing account.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	ADMIN_USERNAME=admin ADMIN_EMAIL=admin@kvk.local ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
)

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func main() {
	username := envOr("ADMIN_USERNAME", "admin")
	email := envOr("ADMIN_EMAIL", "admin@kvk.local")
	password := os.Getenv("ADMIN_PASSWORD")
	if !utils.IsStrongPassword(password) || len(password) < 6 {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD must be at least 6 characters with a lowercase letter, an uppercase letter and a number")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	user, created, err := models.CreateAdmin(context.Background(), username, email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin user: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("Created admin user: username=%q email=%q\n", user.Username, user.Email)
		return
	}
	fmt.Printf("Promoted existing user to admin: username=%q\n", user.Username)
}
