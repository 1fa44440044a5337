package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	_ "numbersapi/docs"
	"numbersapi/internal/config"
	"numbersapi/internal/database"
	"numbersapi/internal/handlers"
	"numbersapi/internal/middleware"
	"numbersapi/internal/repositories"
	"numbersapi/internal/routes"
	"numbersapi/internal/services"
)

const shutdownTimeout = 10 * time.Second

// OpenStore connects and migrates. The server must not start without it.
func OpenStore(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, cfg.Database.Driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// issueLocker picks Redis when configured, otherwise an in-process map.
func issueLocker(ctx context.Context, cfg config.RedisConfig) (services.IssueLocker, func(), error) {
	if cfg.Addr == "" {
		return services.NewLocalIssueLocker(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	log.Printf("[app] issue locks in redis %s", cfg.Addr)
	return services.NewRedisIssueLocker(client), func() { client.Close() }, nil
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	// === DB ===
	db, err := OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[app] close db: %v", err)
		}
	}()

	locks, closeLocks, err := issueLocker(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeLocks()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	numberRepo := repositories.NewNumberRepository(db)
	counterRepo := repositories.NewCounterRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	verificationService := services.NewVerificationService(codeRepo, emailService, locks, services.VerificationConfig{
		CodeLength:   cfg.Verification.CodeLength,
		TTL:          cfg.Verification.TTL,
		IssueLockTTL: cfg.Verification.IssueLockTTL,
	})
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	authService := services.NewAuthService(userRepo, verificationService, tokenService, services.NewPasswordService())
	numberService := services.NewNumberService(numberRepo, services.NewSerialAllocator(counterRepo))

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService)
	numberHandler := handlers.NewNumberHandler(numberService)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecureHeaders())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	routes.SetupRoutes(router, cfg.Auth.Mode, tokenService, authHandler, numberHandler)

	// reaper работает, пока жив сервер
	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go verificationService.RunReaper(reaperCtx, cfg.Verification.ReapInterval)

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[app] listening on %s (auth mode %s, driver %s)", srv.Addr, cfg.Auth.Mode, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Backfill stamps legacy records; see services.BackfillService.
func Backfill(ctx context.Context, cfg *config.Config, sequence string, dryRun bool) (*services.BackfillReport, error) {
	db, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer db.Close()

	svc := services.NewBackfillService(db, repositories.NewNumberRepository(db), repositories.NewCounterRepository(db))
	return svc.Run(ctx, sequence, dryRun)
}
