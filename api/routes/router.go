package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/groceryshare-backend/api/controllers"
	"github.com/angelmondragon/groceryshare-backend/api/middleware"
	"github.com/angelmondragon/groceryshare-backend/internal/auth"
	"github.com/angelmondragon/groceryshare-backend/internal/friends"
	"github.com/angelmondragon/groceryshare-backend/internal/groceries"
	"github.com/angelmondragon/groceryshare-backend/internal/matches"
	"github.com/angelmondragon/groceryshare-backend/internal/purchases"
	"github.com/angelmondragon/groceryshare-backend/pkg/auth/session"
	"github.com/angelmondragon/groceryshare-backend/pkg/config"
	"github.com/angelmondragon/groceryshare-backend/pkg/logger"
	"github.com/angelmondragon/groceryshare-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/groceryshare-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// Deps carries everything the router wires into handlers. cmd/api builds
// one from the live clients; tests substitute fakes field by field.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *pkgredis.Client
	Sessions    sessionManager
	HTTPMetrics *metrics.HTTPMetrics
	// MetricsHandler serves GET /metrics. Usually promhttp.HandlerFor
	// over the process registry.
	MetricsHandler http.Handler

	Auth      auth.Service
	Register  auth.RegisterService
	Friends   friends.Service
	Groceries groceries.Service
	Matches   matches.Service
	Purchases purchases.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	// A nil *redis.Client stuffed into an interface is not a nil
	// interface, so the conversions happen here where the concrete
	// type is still visible.
	var idemStore pkgredis.IdempotencyStore
	var rateStore rateLimiterStore
	var redisPinger controllers.Pinger
	if d.Redis != nil {
		idemStore = d.Redis
		rateStore = d.Redis
		redisPinger = d.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if d.HTTPMetrics != nil {
		r.Use(middleware.Metrics(d.HTTPMetrics))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, redisPinger))
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).
			Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, rateStore, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(d.Register, d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/friends", func(r chi.Router) {
			r.Get("/", controllers.FriendsList(d.Friends, logg))
			r.Post("/", controllers.FriendsAdd(d.Friends, logg))
			r.Delete("/{username}", controllers.FriendsRemove(d.Friends, logg))
		})

		r.Route("/v1/groceries/items", func(r chi.Router) {
			r.Get("/", controllers.GroceriesList(d.Groceries, logg))
			r.Post("/", controllers.GroceriesAdd(d.Groceries, logg))
			r.Delete("/{name}", controllers.GroceriesRemove(d.Groceries, logg))
		})

		r.Route("/v1/matches", func(r chi.Router) {
			r.Get("/", controllers.MatchesFind(d.Matches, logg))
			r.Get("/{friend}", controllers.MatchesFindWith(d.Matches, logg))
		})

		r.Route("/v1/purchases", func(r chi.Router) {
			r.Post("/claim", controllers.PurchasesClaim(d.Purchases, logg))
			r.Post("/settle", controllers.PurchasesSettle(d.Purchases, logg))
			r.Get("/preview", controllers.PurchasesPreview(d.Purchases, logg))
			r.Get("/ongoing", controllers.PurchasesOngoing(d.Purchases, logg))
			r.Get("/claimed", controllers.PurchasesClaimed(d.Purchases, logg))
			r.Get("/history", controllers.PurchasesHistory(d.Purchases, logg))
		})
	})

	return r
}
