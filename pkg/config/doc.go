// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 to
// deliver a small API that:
//
//   - Loads values from one or multiple .env files (falling back to the
//     default .env in the current working directory).
//   - Parses the environment into any Go struct using field tags.
//   - Caches the parse outcome per configuration type, errors included,
//     so each type is parsed once for the lifetime of the process.
//   - Exposes panic-on-failure variants (MustLoadEnv, MustLoad) for
//     configuration the application cannot start without.
//   - Allows explicit cache reset or forced reload, which tests need.
//
// # Architecture
//
// Internally the package keeps a process-wide cache of parse outcomes
// keyed by struct type name. Each entry carries a sync.Once, so the
// parsing work runs at most once per configuration type even under
// concurrent access, and a failed parse is reported identically to
// every caller.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields
// with env tags:
//
//	type Config struct {
//	    DSN      string `env:"POSTGRES_DSN,required"`
//	    PoolSize int    `env:"POSTGRES_POOL_SIZE" envDefault:"10"`
//	}
//
// Then populate it:
//
//	import "github.com/dmitrymomot/tenantkit/pkg/config"
//
//	func main() {
//	    var cfg Config
//	    if err := config.Load(&cfg); err != nil {
//	        log.Fatalf("parsing env: %v", err)
//	    }
//	}
//
// Subsequent calls to config.Load for the same type are served from the
// in-memory cache without re-parsing.
//
// # Error Handling
//
// The package defines sentinel errors comparable with errors.Is:
//
//   - ErrParsingConfig – failed to parse env vars into the struct.
//   - ErrNilPointer – nil pointer passed to Load/MustLoad.
//
// # Testing Helpers
//
// Use ResetCache to clear the global cache between tests or
// ForceReloadConfig to reload a particular struct after the process
// environment changes.
package config
