package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-blog/internal/account"
	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/avatar"
	"github.com/redmonkez12/go-blog/internal/config"
	"github.com/redmonkez12/go-blog/internal/database"
	"github.com/redmonkez12/go-blog/internal/email"
	httpServer "github.com/redmonkez12/go-blog/internal/http"
	"github.com/redmonkez12/go-blog/internal/logging"
	"github.com/redmonkez12/go-blog/internal/post"
	"github.com/redmonkez12/go-blog/internal/user"
	"github.com/redmonkez12/go-blog/internal/web"
	"github.com/redmonkez12/go-blog/templates"
)

func runServe(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
		"avatar_backend", cfg.Avatar.Backend,
	)

	// Initialize database connection
	sqlDB, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	db := database.NewBunDB(sqlDB)
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(cmd.Context(), cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	postRepo := post.NewRepository(db)
	sessionRepo := auth.NewRedisSessionRepository(redisClient)
	registrationRepo := auth.NewRedisRegistrationRepository(redisClient)

	tokens, err := newTokenCodec(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	// Initialize avatar storage
	store, err := avatar.NewStore(cmd.Context(), cfg.Avatar)
	if err != nil {
		return fmt.Errorf("failed to initialize avatar store: %w", err)
	}
	if cfg.Avatar.Backend == "disk" {
		if _, err := os.Stat(filepath.Join(cfg.Avatar.Dir, cfg.Avatar.DefaultImage)); err != nil {
			logger.Warn("default avatar missing", "path", filepath.Join(cfg.Avatar.Dir, cfg.Avatar.DefaultImage))
		}
	}
	saver := avatar.NewSaver(store, cfg.Avatar)

	// Initialize services
	authService := auth.NewService(
		userRepo,
		sessionRepo,
		registrationRepo,
		tokens,
		email.NewService(cfg.Email),
		logger,
		cfg.Auth.SessionDuration,
		cfg.Auth.RememberDuration,
		cfg.Auth.TokenLifetime,
	)
	accountService := account.NewService(userRepo, saver)

	renderer, err := web.NewRenderer(templates.FS, saver.URL)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	// Initialize HTTP handlers
	secureCookies := !cfg.Server.IsDevelopment()
	webHandler := web.NewHandler(
		authService,
		accountService,
		postRepo,
		renderer,
		logger,
		secureCookies,
		cfg.Avatar.MaxUploadBytes,
	)
	authMiddleware := auth.NewMiddleware(authService, secureCookies)

	// Initialize router
	router, err := httpServer.NewRouter(cfg, webHandler, authMiddleware, logger)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	// Initialize HTTP server
	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Options{
		Development: cfg.Server.IsDevelopment(),
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
	})
}

// newTokenCodec returns the signer for emailed links selected by TOKEN_FORMAT
func newTokenCodec(cfg config.AuthConfig) (auth.TokenCodec, error) {
	switch cfg.TokenFormat {
	case "paseto":
		return auth.NewPasetoCodec(cfg.TokenKey, cfg.TokenLifetime)
	case "jwt":
		return auth.NewJWTCodec(cfg.TokenKey, cfg.TokenLifetime)
	default:
		return nil, errors.New("unknown token format " + cfg.TokenFormat)
	}
}

// initRedis connects to Redis and verifies the connection
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
