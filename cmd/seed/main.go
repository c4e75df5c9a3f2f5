package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-users-auth-api/config"
	"github.com/oksasatya/go-users-auth-api/internal/application"
	pginfra "github.com/oksasatya/go-users-auth-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
)

// seed creates the admin account, or promotes and resets it when the email exists.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if cfg.SeedAdminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	svc := application.NewService(pginfra.NewUserRepository(pool), nil, logger)
	u, created, err := svc.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithField("user_id", u.ID).WithField("email", u.Email).WithField("created", created).Info("admin seeded")
}
