package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dreamwise/dreamwise/internal/config"
	"github.com/dreamwise/dreamwise/internal/db"
	"github.com/dreamwise/dreamwise/internal/middleware"
	"github.com/dreamwise/dreamwise/internal/repository"
	"github.com/dreamwise/dreamwise/internal/service"
	"github.com/dreamwise/dreamwise/internal/storage"
)

// App holds the process-wide dependencies. It is built once at startup
// and passed down explicitly.
type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	AccountService      *service.AccountService
	VerificationService *service.VerificationService
	AuthService         *service.AuthService
	AvatarService       *service.AvatarService
	Mailer              service.Mailer
	AuthRateLimiter     *middleware.RateLimiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage is optional; without a bucket avatar uploads are disabled.
	var avatarStorage storage.Storage
	if cfg.AvatarsEnabled() {
		s3, err := storage.New(ctx, storage.S3Config{
			Region:              cfg.S3Region,
			Bucket:              cfg.S3Bucket,
			AccessKey:           cfg.S3AccessKey,
			SecretKey:           cfg.S3SecretKey,
			Endpoint:            cfg.S3Endpoint,
			PresignExpiryPublic: cfg.S3PresignExpiryPublic,
		})
		if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		if err == nil {
			avatarStorage = s3
		}
	}

	mailer := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	return Wire(cfg, database, mailer, avatarStorage), nil
}

// Wire builds the services on an open, migrated database.
func Wire(cfg *config.Config, database *sqlx.DB, mailer service.Mailer, avatarStorage storage.Storage) *App {
	// Repositories
	accountRepository := repository.NewAccountRepository(database)
	codeRepository := repository.NewVerificationCodeRepository(database)

	// Services
	accountService := service.NewAccountService(accountRepository, service.NewPasswordHasher(cfg.BcryptCost))
	verificationService := service.NewVerificationService(codeRepository, cfg.VerificationCodeTTL, cfg.VerificationMaxAttempts)
	authService := service.NewAuthService(accountService, verificationService, mailer, cfg.JWTSecret, cfg.JWTExpiry)
	avatarService := service.NewAvatarService(accountService, avatarStorage)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		AccountService:      accountService,
		VerificationService: verificationService,
		AuthService:         authService,
		AvatarService:       avatarService,
		Mailer:              mailer,
		AuthRateLimiter:     middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow),
	}
}

func (a *App) Close() error {
	if a.AuthRateLimiter != nil {
		a.AuthRateLimiter.Close()
	}
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
