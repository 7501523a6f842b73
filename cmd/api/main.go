package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/neonkeys-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/neonkeys-api/internal/auth"
	"github.com/redmonkez12/neonkeys-api/internal/category"
	"github.com/redmonkez12/neonkeys-api/internal/config"
	"github.com/redmonkez12/neonkeys-api/internal/database"
	httpServer "github.com/redmonkez12/neonkeys-api/internal/http"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
	"github.com/redmonkez12/neonkeys-api/internal/metrics"
	"github.com/redmonkez12/neonkeys-api/internal/product"
	"github.com/redmonkez12/neonkeys-api/internal/ratelimit"
	"github.com/redmonkez12/neonkeys-api/internal/user"
)

// @title           NeonKeys API
// @version         1.0
// @description     E-commerce backend for the NeonKeys keyboard shop: user accounts and a product catalog.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.Server.LogLevel, cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_strategy", cfg.Auth.TokenStrategy,
	)

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB, "up"); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	rateLimiter, closeLimiter, err := initRateLimiter(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	tokenService, err := auth.NewTokenService(cfg.Auth.TokenStrategy, cfg.Auth.JWTSecret, cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params)

	// Repositories
	userRepo := user.NewRepository(db)
	categoryRepo := category.NewRepository(db)
	productRepo := product.NewRepository(db)

	// Services
	userService := user.NewService(userRepo, hasher, tokenService, cfg.Auth.TokenDuration, logger)
	productService := product.NewService(productRepo, categoryRepo, logger)

	exposeDetails := cfg.Server.IsDevelopment()
	handlers := httpServer.Handlers{
		Users:    user.NewHandler(userService, rateLimiter, exposeDetails),
		Products: product.NewHandler(productService, exposeDetails),
	}

	router := httpServer.NewRouter(cfg, handlers, auth.NewMiddleware(tokenService), logger, metrics.New())

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRateLimiter connects to Redis when rate limiting is enabled and
// returns a no-op limiter otherwise.
func initRateLimiter(ctx context.Context, cfg *config.Config, logger *logging.Logger) (user.RateLimiter, func(), error) {
	if !cfg.RateLimit.Enabled {
		logger.Info("rate limiting disabled")
		return ratelimit.Disabled{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	limiter := ratelimit.NewLimiter(client, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	return limiter, func() { client.Close() }, nil
}
