// Package cmd wires configuration, storage, services and the HTTP server
// together and runs the application.
package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"fundo/auth"
	"fundo/config"
	"fundo/database"
	"fundo/events"
	"fundo/notifications"
	"fundo/pix"
	"fundo/repository"
	"fundo/server"
	"fundo/service"
)

// Run starts the application and blocks until the context is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting fundo")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	bus := events.NewBus()
	notifications.NewNotifier(cfg.WebhookURL).Register(bus)

	uowFactory := repository.NewUnitOfWorkFactory(db, bus)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	cotistaRepo := repository.NewCotistaRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	depositRepo := repository.NewPixDepositRepository(db)
	boxRepo := repository.NewSavingsBoxRepository(db)
	jobRunRepo := repository.NewJobRunRepository(db)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	receiver := pix.Receiver{
		Key:  cfg.PixReceiverKey,
		Name: cfg.PixReceiverName,
		City: cfg.PixReceiverCity,
	}

	srv := server.New(server.Deps{
		Auth:     service.NewAuthService(userRepo, cotistaRepo, issuer),
		Users:    service.NewUserService(uowFactory, userRepo, roleRepo, cfg.BcryptCost),
		Cotistas: service.NewCotistaService(cotistaRepo, movementRepo),
		Deposits: service.NewDepositService(uowFactory, depositRepo, cotistaRepo, receiver, bus),
		Savings:  service.NewSavingsService(uowFactory, boxRepo),
		Earnings: service.NewEarningsService(uowFactory, boxRepo, jobRunRepo, bus),

		Issuer:          issuer,
		CronSecret:      cfg.CronSecret,
		LoginRatePerMin: cfg.LoginRatePerMin,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Listen(cfg.Port)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("Shutting down HTTP server")
		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func configureLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.DebugLevel)
}
