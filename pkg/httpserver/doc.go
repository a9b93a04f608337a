// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, health probes, and slog-based lifecycle logging.
//
// Server is built through New or NewFromConfig with functional options
// (WithAddr, WithReadTimeout, WithLogger, ...). Run starts the listener in
// its own goroutine and blocks until the context is cancelled, an
// interrupt/TERM signal arrives, or the listener fails; it then drains
// in-flight requests via http.Server.Shutdown bounded by the shutdown
// timeout. WithStartHook and WithStopHook run side effects around the
// lifecycle. Startup failures wrap ErrStart and shutdown failures wrap
// ErrShutdown, so both are inspectable with errors.Is.
//
// HealthCheckHandler doubles as liveness and readiness endpoint: with no
// probes it reports ALIVE, with probes it runs each against the request
// context and reports READY or NOT_READY. Probe functions for the
// datastores live next to their pools, for example pg.Healthcheck and
// redis.Healthcheck.
//
// # Usage
//
//	import (
//		"context"
//		"log/slog"
//		"time"
//
//		"github.com/go-chi/chi/v5"
//
//		"github.com/dmitrymomot/tenantkit/pkg/httpserver"
//		"github.com/dmitrymomot/tenantkit/pkg/pg"
//	)
//
//	func main() {
//		r := chi.NewRouter()
//		r.Get("/healthz", httpserver.HealthCheckHandler(slog.Default()))
//		r.Get("/readyz", httpserver.HealthCheckHandler(slog.Default(), pg.Healthcheck(pool)))
//
//		srv := httpserver.New(
//			httpserver.WithAddr(":8080"),
//			httpserver.WithShutdownTimeout(10*time.Second),
//			httpserver.WithLogger(slog.Default()),
//		)
//
//		if err := srv.Run(context.Background(), r); err != nil {
//			slog.Error("server stopped", "err", err)
//		}
//	}
package httpserver
