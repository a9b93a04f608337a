// Package redis provides helpers for connecting to the Redis server that
// backs the shared tenant-resolution cache.
//
// The package wraps the go-redis client and adds:
//
//   - A Connect helper that retries the connection using the supplied
//     configuration, so Redis and the application can start in any order.
//   - A health-check helper to integrate Redis into HTTP liveness and
//     readiness probes.
//
// Configuration is described by the Config struct whose fields are
// populated from environment variables via github.com/caarlos0/env.
//
// # Usage
//
//	import "github.com/dmitrymomot/tenantkit/pkg/redis"
//
//	cfg := redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  5 * time.Second,
//	    ConnectTimeout: 30 * time.Second,
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
// The connected client plugs into registry.NewRedisCache for cross-instance
// tenant resolution caching.
//
// Register a health-check in the HTTP server:
//
//	checker := redis.Healthcheck(client)
//	if err := checker(ctx); err != nil {
//	    // redis is not healthy
//	}
//
// # Errors
//
// The package defines sentinel errors (e.g. ErrRedisNotReady) that wrap the
// underlying go-redis errors using errors.Join, so they compare with
// errors.Is and unwrap cleanly.
package redis
