package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// HealthCheckHandler returns a handler that serves both liveness and
// readiness probes.
//
//   - Liveness: with no probe functions the handler returns 200 OK with
//     body "ALIVE".
//   - Readiness: each probe runs with the request context; if all succeed
//     the handler returns 200 OK with body "READY", otherwise
//     500 Internal Server Error with body "NOT_READY".
func HealthCheckHandler(log *slog.Logger, probes ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(probes) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		ctx := r.Context()
		for _, probe := range probes {
			if err := probe(ctx); err != nil {
				log.ErrorContext(ctx, "readiness probe failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
