package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/logger"
	"marketplace/internal/router"
	"marketplace/internal/services"
	"marketplace/internal/store"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func main() {
	envFile := flag.String("env-file", "", "path to a .env file (default ./.env)")
	port := flag.String("port", "", "HTTP listen port (overrides PORT)")
	storeDriver := flag.String("store", "", "store backend: mongo, mysql or memory (overrides STORE_DRIVER)")
	flag.Parse()

	var cfg config.Config
	if *envFile != "" {
		cfg = config.LoadConfig(*envFile)
	} else {
		cfg = config.LoadConfig()
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *storeDriver != "" {
		cfg.StoreDriver = *storeDriver
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("store", cfg.StoreDriver).Msg("Application starting")
	if cfg.JWTSecretDefault {
		log.Warn().Msg("JWT_SECRET not set, using default key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error closing store")
		}
	}()

	hasher, err := services.NewPasswordHasher(cfg.HashConcurrency, services.PasswordCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize password hasher")
	}
	authService := services.NewAuthService(cfg.JWTSecret, cfg.TokenTTL, log)

	handler := router.SetupRouter(router.Services{
		Users: services.NewUserService(st, hasher, authService, log, services.UserServiceOptions{
			AllowPrivilegedSignup: cfg.AllowPrivilegedSignup,
		}),
		Products:     services.NewProductService(st, st, log),
		Orders:       services.NewOrderService(st, st, st, log),
		Transactions: services.NewTransactionService(st, st, st, log),
	}, router.Options{
		RateLimitRPS:         cfg.RateLimitRPS,
		RateLimitBurst:       cfg.RateLimitBurst,
		SlowRequestThreshold: cfg.SlowRequestThreshold,
	}, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "mongo":
		database, err := db.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB, log)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureIndexes(ctx, database, log); err != nil {
			_ = database.Client().Disconnect(context.Background())
			return nil, err
		}
		return store.NewMongoStore(database), nil

	case "mysql":
		database, err := db.InitDB(ctx, cfg.DBUrl, log)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, database, log); err != nil {
			database.Close()
			return nil, err
		}
		return store.NewMySQLStore(database), nil

	case "memory":
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
