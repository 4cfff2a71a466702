package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mioNacs/SITCoders-sub000/internal/community/blob"
	"github.com/mioNacs/SITCoders-sub000/internal/community/notify"
	"github.com/mioNacs/SITCoders-sub000/internal/community/service"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store/drivers/sqlite"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
	"github.com/mioNacs/SITCoders-sub000/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the identity core together and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	notifier notify.Notifier
	blobs    blob.Store
	clock    clockx.Clock

	// Services
	Registration *service.RegistrationService
	OTP          *service.OTPService
	Admins       *service.AdminService
	Suspensions  *service.SuspensionService
	Moderation   *service.ModerationService
	Tokens       *service.TokenService
	sweeper      *service.Sweeper
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:   cfg,
		clock: clockx.Real{},
		logger: slogx.New(slogx.Config{
			Service: "community-core",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	db, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	app.db = db

	app.notifier = notify.NewRateLimited(
		&notify.Slog{Logger: app.logger},
		cfg.NotifyPerMinute,
		cfg.NotifyBurst,
	)

	if cfg.S3Bucket != "" {
		blobs, err := blob.NewS3Store(context.Background(), blob.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			BaseURL:   cfg.AssetBaseURL,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to init asset store: %w", err)
		}
		app.blobs = blobs
	} else {
		app.logger.Warn("no S3 bucket configured, using in-memory asset store")
		app.blobs = blob.NewMemory()
	}

	app.initServices()
	return app, nil
}

func (app *Application) initServices() {
	app.OTP = &service.OTPService{
		Store:    app.db,
		Notifier: app.notifier,
		Clock:    app.clock,
	}
	app.Tokens = &service.TokenService{
		Secret: []byte(app.cfg.SessionSecret),
		TTL:    app.cfg.SessionTTL,
		Clock:  app.clock,
	}
	app.Registration = &service.RegistrationService{
		Store:  app.db,
		OTP:    app.OTP,
		Tokens: app.Tokens,
		Blobs:  app.blobs,
		Clock:  app.clock,
	}
	app.Admins = &service.AdminService{
		Store:              app.db,
		Clock:              app.clock,
		AdminCanGrantAdmin: app.cfg.AdminCanGrantAdmin,
	}
	app.Suspensions = &service.SuspensionService{
		Store:    app.db,
		Notifier: app.notifier,
		Clock:    app.clock,
	}
	app.Moderation = &service.ModerationService{
		Store:    app.db,
		Notifier: app.notifier,
		Blobs:    app.blobs,
		Clock:    app.clock,
	}
	app.sweeper = service.NewSweeper(
		app.db,
		app.Suspensions,
		app.logger,
		app.clock,
		app.cfg.SweepInterval,
		app.cfg.GracePeriod,
	)
}

// Run starts the background sweeper and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.sweeper.Start()
	app.logger.Info("community identity core started", "version", BuildVersion)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	app.logger.Info("shutdown signal received", "signal", sig)

	return app.Shutdown()
}

// Shutdown stops the sweeper and closes the store.
func (app *Application) Shutdown() error {
	app.sweeper.Stop()

	if err := app.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	app.logger.Info("shutdown complete")
	return nil
}
