// Command seeder bootstraps the initial accounts: one SUPER_ADMIN and,
// optionally, a set of demo department accounts for local development.
// Existing usernames are skipped, so the command is safe to re-run.
//
// Flags:
//
//	--admin-password  initial SUPER_ADMIN password (required on first run)
//	--demo            also create demo ADMIN/USER accounts
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/adapter/postgres"
	userrepo "github.com/laveleven/labelai-backend/internal/adapter/postgres/user"
	"github.com/laveleven/labelai-backend/internal/app"
	"github.com/laveleven/labelai-backend/internal/auth"
	"github.com/laveleven/labelai-backend/internal/config"
	"github.com/laveleven/labelai-backend/internal/domain"
)

func main() {
	adminPassword := flag.String("admin-password", "", "initial SUPER_ADMIN password")
	demo := flag.Bool("demo", false, "create demo department accounts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	if *adminPassword == "" {
		logger.Error("missing --admin-password")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	users := userrepo.New(pool)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	seed := func(username, email, password string, role domain.Role, department *string) {
		exists, err := users.ExistsByUsername(ctx, username)
		if err != nil {
			logger.Error("check username", slog.String("username", username), slog.String("error", err.Error()))
			os.Exit(1)
		}
		if exists {
			logger.Info("account already exists, skipping", slog.String("username", username))
			return
		}

		hash, err := hasher.Hash(password)
		if err != nil {
			logger.Error("hash password", slog.String("error", err.Error()))
			os.Exit(1)
		}

		_, err = users.Create(ctx, &domain.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			DepartmentID: department,
			IsActive:     true,
		})
		if err != nil {
			logger.Error("create account", slog.String("username", username), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("account created",
			slog.String("username", username),
			slog.String("role", role.String()),
		)
	}

	seed("superadmin", "superadmin@labelai.com", *adminPassword, domain.RoleSuperAdmin, nil)

	if *demo {
		deptA, deptB := "DEPT_A", "DEPT_B"
		seed("admin1", "admin1@labelai.com", *adminPassword, domain.RoleAdmin, &deptA)
		seed("user1", "user1@labelai.com", *adminPassword, domain.RoleUser, &deptA)
		seed("user2", "user2@labelai.com", *adminPassword, domain.RoleUser, &deptB)
	}
}
