package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/libraria-backend/api/responses"
	"github.com/angelmondragon/libraria-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
)

// Pinger is anything that can confirm a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config, service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Libraria-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live", "service": service})
	}
}

// HealthReady reports ready only when every registered dependency answers
// a ping. Nil pingers are skipped so services without Redis reuse it.
func HealthReady(cfg *config.Config, logg *logger.Logger, service string, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Libraria-Env", cfg.App.Env)
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "service": service})
	}
}
