// Command tenantd is an example server wiring the kit end to end: a
// tenant registry on PostgreSQL, schema-per-tenant routing for request
// traffic, and the admin API for lifecycle operations.
//
// Configuration comes from the environment (and an optional .env file).
// PG_CONN_URL is required; REDIS_URL switches the resolution cache from
// in-process memory to Redis; TENANT_SETTINGS_KEY (base64, 32 bytes)
// enables settings encryption at rest.
package main

import (
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantkit/migrations"
	"github.com/dmitrymomot/tenantkit/modules/admin"
	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/plans"
	"github.com/dmitrymomot/tenantkit/pkg/provision"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/registry"
	"github.com/dmitrymomot/tenantkit/pkg/requestid"
	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tenantdb"
)

//go:embed plans.yaml
var plansFS embed.FS

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"` // Env selects the logger profile: development, staging, or production.
	Service string `env:"APP_NAME" envDefault:"tenantd"`    // Service is the service name attached to every log record.

	TenantHeader    string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"` // TenantHeader carries the tenant identifier on API requests.
	SubdomainSuffix string        `env:"TENANT_SUBDOMAIN_SUFFIX"`                // SubdomainSuffix enables subdomain resolution, e.g. ".example.com".
	DefaultTenant   string        `env:"TENANT_DEFAULT"`                         // DefaultTenant resolves requests that present no identifier at all.
	CacheTTL        time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`       // CacheTTL bounds how long resolution results stay cached.
	SettingsKey     string        `env:"TENANT_SETTINGS_KEY"`                    // SettingsKey is the base64 app key for settings encryption at rest.
	MigrateTenants  bool          `env:"TENANT_MIGRATE_ON_START" envDefault:"false"` // MigrateTenants rolls pending migrations out to all tenants at startup.
}

func main() {
	if _, err := os.Stat(".env"); err == nil {
		config.MustLoadEnv(".env")
	}

	var (
		cfg       appConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		schemaCfg schema.Config
		srvCfg    httpserver.Config
	)
	config.MustLoad(&cfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&schemaCfg)
	config.MustLoad(&srvCfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
			tenant.SchemaLoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, pgCfg, redisCfg, schemaCfg, srvCfg, log); err != nil {
		log.Error("tenantd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, pgCfg pg.Config, redisCfg redis.Config, schemaCfg schema.Config, srvCfg httpserver.Config, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.Registry(), pgCfg, log); err != nil {
		return err
	}

	var storeOpts []registry.StoreOption
	if cfg.SettingsKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.SettingsKey)
		if err != nil {
			return errors.Join(errors.New("TENANT_SETTINGS_KEY is not valid base64"), err)
		}
		storeOpts = append(storeOpts, registry.WithSettingsKey(key))
	}
	store := registry.New(pool, storeOpts...)

	var (
		cache  tenant.Cache = tenant.NewInMemoryCache()
		probes              = []func(context.Context) error{pg.Healthcheck(pool)}
	)
	if redisCfg.ConnectionURL != "" {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = registry.NewRedisCache(client, registry.WithCacheLogger(log))
		probes = append(probes, redis.Healthcheck(client))
	}

	manager, err := schema.New(pool, migrations.Tenant(),
		append(schemaCfg.Options(), schema.WithLogger(log))...)
	if err != nil {
		return err
	}

	catalog, err := plans.Load(plansFS, "plans.yaml")
	if err != nil {
		return err
	}

	svc := provision.New(store, manager,
		provision.WithCache(cache),
		provision.WithPlans(catalog),
		provision.WithLogger(log),
	)

	if cfg.MigrateTenants {
		if err := svc.MigrateAll(ctx); err != nil {
			return err
		}
	}

	scoped, err := tenantdb.New(pool, tenantdb.WithLogger(log))
	if err != nil {
		return err
	}

	resolvers := []tenant.Resolver{tenant.NewHeaderResolver(cfg.TenantHeader)}
	if cfg.SubdomainSuffix != "" {
		resolvers = append(resolvers, tenant.NewSubdomainResolver(cfg.SubdomainSuffix))
	}

	tenantOpts := []tenant.Option{
		tenant.WithCache(cache),
		tenant.WithCacheTTL(cfg.CacheTTL),
		tenant.WithLogger(log),
	}
	if cfg.DefaultTenant != "" {
		tenantOpts = append(tenantOpts, tenant.WithDefaultTenant(cfg.DefaultTenant))
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, probes...))

	api := admin.New(svc, admin.WithLogger(log))
	r.Mount("/admin/v1", api.Handle())

	// Tenant-scoped routes: everything in this group runs with the
	// resolved tenant bound to the request context.
	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(tenant.NewCompositeResolver(resolvers...), store, tenantOpts...))
		r.Use(tenant.RequireTenant(nil))
		r.Get("/v1/whoami", whoami)
		r.Get("/v1/schema-check", schemaCheck(scoped))
	})

	srv := httpserver.NewFromConfig(srvCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// whoami reports the tenant the request resolved to.
func whoami(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "no tenant in context", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(t)
}

// schemaCheck round-trips a query through a schema-bound connection and
// reports the schema the database session actually sees.
func schemaCheck(pool *tenantdb.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var current string
		err := pool.WithTenant(ctx, func(ctx context.Context, conn *tenantdb.Conn) error {
			return conn.QueryRow(ctx, "SELECT current_schema()").Scan(&current)
		})
		if err != nil {
			slog.ErrorContext(ctx, "schema check failed", logger.Error(err))
			http.Error(w, "schema check failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{"schema": current})
	}
}
