package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/provision"
	"github.com/dmitrymomot/tenantkit/pkg/registry"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// TenantService is the lifecycle surface the admin API drives.
// *provision.Service satisfies it.
type TenantService interface {
	Provision(ctx context.Context, params provision.NewTenantParams) (*tenant.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	List(ctx context.Context, f registry.Filter) ([]tenant.Tenant, error)
	Update(ctx context.Context, id uuid.UUID, params provision.UpdateParams) (*tenant.Tenant, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings []byte) (*tenant.Tenant, error)
	Suspend(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	Resume(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	Purge(ctx context.Context, id uuid.UUID, confirm string) (*tenant.Tenant, error)
	Migrate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	MigrateAll(ctx context.Context) error
	Retry(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
}

// API exposes tenant lifecycle operations over HTTP. Mount it behind
// operator authentication; the module itself performs none.
type API struct {
	svc TenantService
	log *slog.Logger
}

// Option configures the API.
type Option func(*API)

// WithLogger sets the logger used for internal failures.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates the admin API around the given lifecycle service.
func New(svc TenantService, opts ...Option) *API {
	a := &API{
		svc: svc,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle returns the router with all tenant lifecycle endpoints.
//
//	POST   /tenants               provision a tenant
//	GET    /tenants               list tenants (status, plan, limit, offset)
//	POST   /tenants/migrate       migrate every active and suspended tenant
//	GET    /tenants/{id}          fetch one tenant
//	PATCH  /tenants/{id}          update name, subdomain, or plan
//	DELETE /tenants/{id}          soft-delete (keeps schema and data)
//	GET    /tenants/{id}/settings read the settings document
//	PUT    /tenants/{id}/settings replace the settings document
//	POST   /tenants/{id}/suspend  stop routing requests to the tenant
//	POST   /tenants/{id}/resume   make a suspended tenant routable
//	POST   /tenants/{id}/migrate  migrate one tenant schema
//	POST   /tenants/{id}/retry    re-run failed provisioning
//	DELETE /tenants/{id}/schema   drop the schema (requires confirmation)
func (a *API) Handle() http.Handler {
	r := chi.NewRouter()

	r.Route("/tenants", func(r chi.Router) {
		r.Post("/", a.provision)
		r.Get("/", a.list)
		r.Post("/migrate", a.migrateAll)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.get)
			r.Patch("/", a.update)
			r.Delete("/", a.softDelete)
			r.Get("/settings", a.getSettings)
			r.Put("/settings", a.updateSettings)
			r.Post("/suspend", a.suspend)
			r.Post("/resume", a.resume)
			r.Post("/migrate", a.migrate)
			r.Post("/retry", a.retry)
			r.Delete("/schema", a.purge)
		})
	})

	return r
}
