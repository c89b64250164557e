package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/refurbstock-backend/api/controllers"
	"github.com/angelmondragon/refurbstock-backend/api/middleware"
	"github.com/angelmondragon/refurbstock-backend/internal/auth"
	"github.com/angelmondragon/refurbstock-backend/internal/imports"
	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/auth/session"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	"github.com/angelmondragon/refurbstock-backend/pkg/db"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
	"github.com/angelmondragon/refurbstock-backend/pkg/redis"
)

// multipartOverhead leaves room for multipart boundaries and headers around an
// upload of the configured maximum size.
const multipartOverhead = 1 << 20

// Store is the redis surface the HTTP layer needs: idempotency records,
// login throttling counters and the readiness ping.
type Store interface {
	redis.IdempotencyStore
	redis.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services bundles the domain services mounted on the router.
type Services struct {
	Auth      auth.Service
	Inventory inventory.Service
	Imports   imports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store Store,
	sessions session.AccessSessionChecker,
	services Services,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	deps := map[string]controllers.Pinger{"db": dbP}
	if store != nil {
		deps["redis"] = store
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if store != nil {
				r.Use(middleware.AuthRateLimit(loginPolicy, store, logg))
			}
			r.Post("/auth/login", controllers.AuthLogin(services.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			if store != nil {
				r.Use(middleware.Idempotency(store, cfg.Import.MaxUploadBytes()+multipartOverhead, logg))
			}

			r.Post("/auth/logout", controllers.AuthLogout(services.Auth, logg))

			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.ItemsList(services.Inventory, logg))
				r.Post("/", controllers.ItemsCreate(services.Inventory, logg))
				r.Route("/{itemId}", func(r chi.Router) {
					r.Get("/", controllers.ItemsGet(services.Inventory, logg))
					r.Patch("/", controllers.ItemsUpdate(services.Inventory, logg))
					r.Delete("/", controllers.ItemsDelete(services.Inventory, logg))
					r.Post("/listings/{platform}", controllers.ListingsCreate(services.Inventory, logg))
				})
			})

			r.Post("/imports", controllers.ImportsCreate(services.Imports, cfg.Import.MaxUploadBytes(), logg))
			r.Get("/pricing/quote", controllers.PricingQuote(logg))
		})
	})

	return r
}
