package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/groceryshare-backend/api/routes"
	"github.com/angelmondragon/groceryshare-backend/internal/auth"
	"github.com/angelmondragon/groceryshare-backend/internal/friends"
	"github.com/angelmondragon/groceryshare-backend/internal/groceries"
	"github.com/angelmondragon/groceryshare-backend/internal/matches"
	"github.com/angelmondragon/groceryshare-backend/internal/purchases"
	"github.com/angelmondragon/groceryshare-backend/internal/users"
	"github.com/angelmondragon/groceryshare-backend/pkg/auth/session"
	"github.com/angelmondragon/groceryshare-backend/pkg/config"
	"github.com/angelmondragon/groceryshare-backend/pkg/db"
	"github.com/angelmondragon/groceryshare-backend/pkg/logger"
	"github.com/angelmondragon/groceryshare-backend/pkg/metrics"
	"github.com/angelmondragon/groceryshare-backend/pkg/migrate"
	"github.com/angelmondragon/groceryshare-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	friendsRepo := friends.NewRepository(dbClient.DB())
	groceriesRepo := groceries.NewRepository(dbClient.DB())
	purchasesRepo := purchases.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	friendsService, err := friends.NewService(friends.ServiceParams{
		Repo:  friendsRepo,
		Users: usersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create friends service", err)
		os.Exit(1)
	}

	groceriesService, err := groceries.NewService(groceries.ServiceParams{Repo: groceriesRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create groceries service", err)
		os.Exit(1)
	}

	matchesService, err := matches.NewService(matches.ServiceParams{
		Friends:   friendsRepo,
		Groceries: groceriesRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create matches service", err)
		os.Exit(1)
	}

	purchasesService, err := purchases.NewService(purchases.ServiceParams{Repo: purchasesRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create purchases service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.Handler(),
		Auth:           authService,
		Register:       registerService,
		Friends:        friendsService,
		Groceries:      groceriesService,
		Matches:        matchesService,
		Purchases:      purchasesService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		var combined error
		combined = multierr.Append(combined, server.Shutdown(shutdownCtx))
		if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			combined = multierr.Append(combined, err)
		}
		if combined != nil {
			logg.Error(ctx, "api server shutdown reported errors", combined)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
