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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/refurbstock-backend/api/routes"
	"github.com/angelmondragon/refurbstock-backend/internal/auth"
	"github.com/angelmondragon/refurbstock-backend/internal/imports"
	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/auth/session"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	"github.com/angelmondragon/refurbstock-backend/pkg/db"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
	"github.com/angelmondragon/refurbstock-backend/pkg/metrics"
	"github.com/angelmondragon/refurbstock-backend/pkg/migrate"
	"github.com/angelmondragon/refurbstock-backend/pkg/redis"
	"github.com/angelmondragon/refurbstock-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	hashPassword := flag.String("hash-password", "", "print an argon2id hash for REFURBSTOCK_OPERATOR_PASSWORD_HASH and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	if *hashPassword != "" {
		pwCfg, err := config.LoadPassword()
		requireResource(context.Background(), logg, "password config", err)
		hash, err := security.HashPassword(*hashPassword, pwCfg)
		requireResource(context.Background(), logg, "password hash", err)
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(context.Background(), logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(context.Background(), logg, "dev migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(context.Background(), logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(context.Background(), logg, "session manager", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewInventoryMetrics(registry)

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, recorder, logg)
	requireResource(context.Background(), logg, "inventory service", err)

	importService, err := imports.NewService(inventoryService, cfg.Import, recorder, logg)
	requireResource(context.Background(), logg, "import service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		Operator:       cfg.Operator,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	requireResource(context.Background(), logg, "auth service", err)
	if cfg.Operator.PasswordHash == "" {
		logg.Warn(context.Background(), "operator password hash not configured, logins will be rejected")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"dialect": dbClient.Dialect(),
	})

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
		Auth:      authService,
		Inventory: inventoryService,
		Imports:   importService,
	}, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
