package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pymetra/registration/internal/config"
	"github.com/pymetra/registration/internal/db"
	"github.com/pymetra/registration/internal/repository"
	"github.com/pymetra/registration/internal/service"
	"github.com/pymetra/registration/internal/service/remote"
	"github.com/pymetra/registration/internal/storage"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	Storage             storage.Storage
	Credentials         *remote.OAuthCredentials
	Remote              *remote.Client
	EmailService        *service.EmailService
	RegistrationService *service.RegistrationService
	BackfillService     *service.BackfillService
	ExportService       *service.ExportService
	AdminAuthService    *service.AdminAuthService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	registrationRepository := repository.NewRegistrationRepository(database)
	credentialRepository := repository.NewCredentialRepository(database)

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Remote replication
	credentials := remote.NewOAuthCredentials(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		credentialRepository,
	)
	remoteClient := remote.NewClient(credentials, remote.NewGoogleAPI, remote.ClientConfig{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		SheetRange:    cfg.GoogleSheetRange,
		FolderID:      cfg.GoogleDriveFolderID,
	})

	// Services
	emailService, err := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.RecipientEmail,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	if err != nil {
		return nil, closeAll(fmt.Errorf("failed to initialize email service: %w", err), database, fileStorage)
	}

	registrationService, err := service.NewRegistrationService(
		registrationRepository,
		fileStorage,
		remoteClient,
		emailService,
		cfg.MaxUploadSize,
		cfg.RecipientEmail,
		cfg.AppName,
	)
	if err != nil {
		return nil, closeAll(fmt.Errorf("failed to initialize registration service: %w", err), database, fileStorage)
	}

	backfillService := service.NewBackfillService(registrationRepository, fileStorage, remoteClient)
	exportService := service.NewExportService(registrationRepository)
	adminAuthService := service.NewAdminAuthService(
		cfg.AdminUsername,
		cfg.AdminPasswordHash,
		cfg.AdminJWTSecret,
		cfg.AdminSessionExpiry,
		cfg.IsProduction(),
	)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		Storage:             fileStorage,
		Credentials:         credentials,
		Remote:              remoteClient,
		EmailService:        emailService,
		RegistrationService: registrationService,
		BackfillService:     backfillService,
		ExportService:       exportService,
		AdminAuthService:    adminAuthService,
	}, nil
}

func closeAll(err error, database *sqlx.DB, fileStorage storage.Storage) error {
	return errors.Join(err, fileStorage.Close(), database.Close())
}

func (a *App) Close() error {
	var errs []error
	if a.Storage != nil {
		errs = append(errs, a.Storage.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
