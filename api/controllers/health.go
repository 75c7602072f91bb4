package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/lumenworks/vision-cms-backend/api/responses"
	"github.com/lumenworks/vision-cms-backend/pkg/config"
	"github.com/lumenworks/vision-cms-backend/pkg/db"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/redis"
	"github.com/lumenworks/vision-cms-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Vision-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency status. A failing dependency flips the
// response to 503 but every check still runs.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		run := func(name string, ping func(context.Context) error) {
			if ping == nil {
				checks[name] = "skipped"
				return
			}
			if err := ping(ctx); err != nil {
				healthy = false
				checks[name] = "down"
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				return
			}
			checks[name] = "up"
		}

		if dbP != nil {
			run("database", dbP.Ping)
		} else {
			run("database", nil)
		}
		if redisP != nil {
			run("redis", redisP.Ping)
		} else {
			run("redis", nil)
		}
		if gcsP != nil {
			run("storage", gcsP.Ping)
		} else {
			run("storage", nil)
		}

		w.Header().Set("X-Vision-Env", cfg.App.Env)
		if !healthy {
			responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").
				WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
