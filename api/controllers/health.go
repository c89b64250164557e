package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/refurbstock-backend/api/responses"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
)

const (
	envHeader         = "X-RefurbStock-Env"
	readyCheckTimeout = 2 * time.Second
)

// Pinger is any dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and reports all outages at once.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name, dep := range deps {
		if dep != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		var (
			errs   error
			failed []string
		)
		checks := make(map[string]string, len(names))
		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
				failed = append(failed, name)
				checks[name] = "down"
				continue
			}
			checks[name] = "ok"
		}
		if errs != nil {
			if logg != nil {
				logg.Error(logg.WithField(r.Context(), "failed", failed), "health.not_ready", errs)
			}
			responses.WriteOutcome(w, http.StatusServiceUnavailable, enums.OutcomeError, "dependencies unavailable",
				map[string]any{"status": "not_ready", "failed": failed, "checks": checks})
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
