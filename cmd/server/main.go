package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/Dias221467/social-connect/internal/config"
	"github.com/Dias221467/social-connect/internal/database"
	"github.com/Dias221467/social-connect/internal/handlers"
	"github.com/Dias221467/social-connect/internal/oauth"
	"github.com/Dias221467/social-connect/internal/repository"
	"github.com/Dias221467/social-connect/internal/routes"
	"github.com/Dias221467/social-connect/internal/services"
	authjwt "github.com/Dias221467/social-connect/pkg/jwt"
	"github.com/Dias221467/social-connect/pkg/logger"
	"github.com/Dias221467/social-connect/pkg/password"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := flag.String("env", ".env", "path to an optional env file")
	flag.Parse()

	os.Exit(run(*envFile))
}

// run wires and serves the API, returning the process exit code. Every
// failure returns instead of exiting so deferred cleanup always runs.
func run(envFile string) int {
	// Load configuration from .env file and environment
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		logger.Log.Errorf("Configuration error: %v", err)
		return 1
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, db, err := database.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Log.Errorf("Database connection error: %v", err)
		return 1
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Errorf("Index setup error: %v", err)
		return 1
	}
	if err := friendRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Errorf("Index setup error: %v", err)
		return 1
	}

	// --- Services ---
	tokens := authjwt.NewManager(cfg.JWTSecret, cfg.TokenExpiry)
	authService := services.NewAuthService(userRepo, password.NewBcryptHasher(cfg.BcryptCost), tokens)
	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(friendRepo, userRepo)

	// --- Google sign-in ---
	var (
		google handlers.OAuthProvider
		states handlers.StateStore
	)
	if cfg.GoogleEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.WithError(err).Warn("Redis not reachable, Google sign-in may fail")
		}
		google = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		states = oauth.NewRedisStateStore(rdb)
		logger.Log.Info("Google sign-in enabled")
	} else {
		logger.Log.Info("Google sign-in disabled")
	}

	// --- Handlers ---
	validator := handlers.NewValidator()
	router := routes.NewRouter(routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, google, states, cfg.FrontendURL, validator),
		User:          handlers.NewUserHandler(userService, friendService, validator),
		Friend:        handlers.NewFriendHandler(friendService),
		Authenticator: authService,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Log.Infof("Server running on port %s", cfg.Port)
	if err := serve(ctx, srv, shutdownTimeout); err != nil {
		logger.Log.WithError(err).Error("Server error")
		return 1
	}
	return 0
}

// serve runs srv until it fails or ctx is cancelled, then shuts it down
// within timeout. A listener failure is returned rather than fatal.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
