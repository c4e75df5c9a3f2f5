package router

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-users-auth-api/internal/application"
	"github.com/oksasatya/go-users-auth-api/internal/container"
	"github.com/oksasatya/go-users-auth-api/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/go-users-auth-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-users-auth-api/internal/infrastructure/search"
	"github.com/oksasatya/go-users-auth-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-users-auth-api/internal/interface/http"
	"github.com/oksasatya/go-users-auth-api/internal/interface/middleware"
	"github.com/oksasatya/go-users-auth-api/internal/router/modules"
)

// buildService wires the user service from the container, attaching the optional
// integrations that were configured.
func buildService() *application.Service {
	cfg := container.GetConfig()
	svc := application.NewService(container.GetUserRepo(), container.GetJWT(), container.GetLogger())

	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		svc.Notifier = messaging.NewEmailNotifier(pub, cfg.AppName)
	}
	if es := container.GetES(); es != nil {
		svc.Index = search.NewUserIndex(es, cfg.ESUsersIndex)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		svc.Avatars = storage.NewGCSAvatars(gcs, cfg.GCSBucket)
	}
	return svc
}

func healthCheck(ctx context.Context) error {
	if pool := container.GetPGPool(); pool != nil {
		if err := pginfra.Ping(ctx, pool); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) error {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := buildService()

	authn, err := middleware.NewAuthenticator(cfg.AuthStrategy, container.GetJWT(), svc)
	if err != nil {
		return err
	}

	r.Add(modules.NewHealthModule(healthCheck))
	r.Add(&modules.UserModule{
		Users:       handlers.NewUserHandler(svc, logger),
		Auth:        handlers.NewAuthHandler(svc, logger),
		Authn:       authn,
		RDB:         container.GetRedis(),
		LoginRate:   cfg.LoginRatePerMin,
		RefreshRate: cfg.RefreshRatePerMin,
		AvatarRate:  cfg.AvatarRatePerMin,
	})
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
	logger.WithField("auth_strategy", cfg.AuthStrategy).Info("modules registered")
	return nil
}
