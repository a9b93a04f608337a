package provision

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/registry"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Registry is the slice of the registry store the service drives.
// *registry.Store satisfies it.
type Registry interface {
	Create(ctx context.Context, t *tenant.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	List(ctx context.Context, f registry.Filter) ([]tenant.Tenant, error)
	Transition(ctx context.Context, t *tenant.Tenant, next tenant.Status) error
	MarkFailed(ctx context.Context, t *tenant.Tenant, cause error) error
	Update(ctx context.Context, t *tenant.Tenant) error
	UpdateSettings(ctx context.Context, t *tenant.Tenant, settings []byte) error
}

// Lifecycle manages the tenant schemas themselves. *schema.Manager
// satisfies it.
type Lifecycle interface {
	CreateSchema(ctx context.Context, schemaName string) error
	MigrateSchema(ctx context.Context, schemaName string) error
	DropSchema(ctx context.Context, schemaName, confirm string) error
}

type planCatalog interface {
	Has(name string) bool
}

// Service orchestrates the tenant lifecycle: registry rows and database
// schemas move together through creating, provisioning, active, and the
// deletion path, with failures compensated into the failed status
// instead of leaving half-provisioned tenants in limbo.
type Service struct {
	reg    Registry
	schema Lifecycle
	cache  tenant.Cache
	plans  planCatalog
	log    *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithCache lets the service evict tenants from the resolution cache
// after mutations, so other instances stop routing on stale records.
func WithCache(c tenant.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithPlans restricts tenant plans to the given catalog.
func WithPlans(c planCatalog) Option {
	return func(s *Service) {
		s.plans = c
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates the lifecycle service.
func New(reg Registry, lifecycle Lifecycle, opts ...Option) *Service {
	s := &Service{
		reg:    reg,
		schema: lifecycle,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTenantParams describes the tenant to provision.
type NewTenantParams struct {
	Key       string
	Name      string
	Subdomain string
	Plan      string
	Settings  []byte
}

// Provision creates the registry record and the tenant schema, and
// activates the tenant. The record is visible from the moment it is
// created, but stays unroutable until the final transition to active.
// Any schema failure moves the tenant to failed with the cause
// recorded; Retry picks it up from there.
func (s *Service) Provision(ctx context.Context, params NewTenantParams) (*tenant.Tenant, error) {
	if err := s.checkPlan(params.Plan); err != nil {
		return nil, err
	}

	schemaName, err := registry.GenerateSchemaName(params.Key)
	if err != nil {
		return nil, err
	}

	t := &tenant.Tenant{
		Key:        params.Key,
		Name:       params.Name,
		Subdomain:  params.Subdomain,
		SchemaName: schemaName,
		Status:     tenant.StatusCreating,
		Plan:       params.Plan,
		Settings:   params.Settings,
	}
	if err := s.reg.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "tenant record created",
		"tenant_id", t.ID, "key", t.Key, "schema", t.SchemaName)

	if err := s.reg.Transition(ctx, t, tenant.StatusProvisioning); err != nil {
		return t, errors.Join(ErrProvisionFailed, err)
	}

	if err := s.schema.CreateSchema(ctx, t.SchemaName); err != nil {
		s.fail(ctx, t, err)
		return t, errors.Join(ErrProvisionFailed, err)
	}

	if err := s.reg.Transition(ctx, t, tenant.StatusActive); err != nil {
		s.fail(ctx, t, err)
		return t, errors.Join(ErrProvisionFailed, err)
	}

	s.log.InfoContext(ctx, "tenant provisioned", "tenant_id", t.ID, "key", t.Key)
	return t, nil
}

// Retry re-runs provisioning for a failed tenant. Schema creation is
// idempotent, so a schema that half-exists is completed rather than
// recreated.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != tenant.StatusFailed {
		return nil, errors.Join(ErrNotRetryable,
			errors.New("tenant "+t.ID.String()+" is "+t.Status.String()))
	}

	if err := s.reg.Transition(ctx, t, tenant.StatusProvisioning); err != nil {
		return t, err
	}
	s.log.InfoContext(ctx, "retrying tenant provisioning", "tenant_id", t.ID, "key", t.Key)

	if err := s.schema.CreateSchema(ctx, t.SchemaName); err != nil {
		s.fail(ctx, t, err)
		return t, errors.Join(ErrProvisionFailed, err)
	}

	if err := s.reg.Transition(ctx, t, tenant.StatusActive); err != nil {
		s.fail(ctx, t, err)
		return t, errors.Join(ErrProvisionFailed, err)
	}
	return t, nil
}

// Suspend blocks request routing for the tenant without touching its
// data.
func (s *Service) Suspend(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.transition(ctx, id, tenant.StatusSuspended)
}

// Resume makes a suspended tenant routable again.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.transition(ctx, id, tenant.StatusActive)
}

// SoftDelete takes the tenant out of rotation while keeping its schema
// and data intact. Purge completes the deletion.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.transition(ctx, id, tenant.StatusDeleting)
}

// Purge drops the tenant's schema and marks the record deleted. The
// tenant must already be soft-deleted and confirm must repeat the
// schema name; both latches exist because this destroys data. Purging
// an already-deleted tenant is a no-op.
func (s *Service) Purge(ctx context.Context, id uuid.UUID, confirm string) (*tenant.Tenant, error) {
	t, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == tenant.StatusDeleted {
		return t, nil
	}
	if t.Status != tenant.StatusDeleting {
		return nil, errors.Join(ErrNotPurgeable,
			errors.New("tenant "+t.ID.String()+" is "+t.Status.String()))
	}

	if err := s.schema.DropSchema(ctx, t.SchemaName, confirm); err != nil {
		return t, err
	}
	if err := s.reg.Transition(ctx, t, tenant.StatusDeleted); err != nil {
		return t, err
	}
	tenant.InvalidateTenant(ctx, s.cache, t)
	s.log.WarnContext(ctx, "tenant purged", "tenant_id", t.ID, "key", t.Key, "schema", t.SchemaName)
	return t, nil
}

// Migrate applies pending baseline migrations to one tenant's schema.
func (s *Service) Migrate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == tenant.StatusDeleting || t.Status == tenant.StatusDeleted {
		return nil, errors.Join(ErrNotMigratable,
			errors.New("tenant "+t.ID.String()+" is "+t.Status.String()))
	}
	if err := s.schema.MigrateSchema(ctx, t.SchemaName); err != nil {
		return t, err
	}
	return t, nil
}

// MigrateAll rolls pending migrations out to every active and suspended
// tenant. Failures do not stop the rollout; they are joined into the
// returned error with every schema that could be migrated already done.
func (s *Service) MigrateAll(ctx context.Context) error {
	var errs []error
	for _, status := range []tenant.Status{tenant.StatusActive, tenant.StatusSuspended} {
		tenants, err := s.reg.List(ctx, registry.Filter{Status: status})
		if err != nil {
			return err
		}
		for i := range tenants {
			t := &tenants[i]
			if err := s.schema.MigrateSchema(ctx, t.SchemaName); err != nil {
				s.log.ErrorContext(ctx, "tenant migration failed",
					"tenant_id", t.ID, "schema", t.SchemaName, "error", err)
				errs = append(errs, errors.Join(err, errors.New("tenant "+t.ID.String())))
				continue
			}
		}
	}
	return errors.Join(errs...)
}

// Get loads a tenant by ID, soft-deleted records included.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.reg.GetByID(ctx, id)
}

// List returns tenants matching the filter.
func (s *Service) List(ctx context.Context, f registry.Filter) ([]tenant.Tenant, error) {
	return s.reg.List(ctx, f)
}

// UpdateParams carries the mutable descriptive fields; nil means keep.
type UpdateParams struct {
	Name      *string
	Subdomain *string
	Plan      *string
}

// Update changes a tenant's descriptive fields. The schema name never
// changes, even when the tenant is renamed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*tenant.Tenant, error) {
	t, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Invalidate under the old identifiers too: a subdomain change must
	// evict the entry cached under the previous subdomain.
	old := *t

	if params.Name != nil {
		t.Name = *params.Name
	}
	if params.Subdomain != nil {
		t.Subdomain = *params.Subdomain
	}
	if params.Plan != nil {
		if err := s.checkPlan(*params.Plan); err != nil {
			return nil, err
		}
		t.Plan = *params.Plan
	}

	if err := s.reg.Update(ctx, t); err != nil {
		return nil, err
	}
	tenant.InvalidateTenant(ctx, s.cache, &old)
	tenant.InvalidateTenant(ctx, s.cache, t)
	return t, nil
}

// UpdateSettings replaces the tenant's settings document.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, settings []byte) (*tenant.Tenant, error) {
	t, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reg.UpdateSettings(ctx, t, settings); err != nil {
		return nil, err
	}
	tenant.InvalidateTenant(ctx, s.cache, t)
	return t, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, next tenant.Status) (*tenant.Tenant, error) {
	t, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reg.Transition(ctx, t, next); err != nil {
		return nil, err
	}
	tenant.InvalidateTenant(ctx, s.cache, t)
	s.log.InfoContext(ctx, "tenant status changed",
		"tenant_id", t.ID, "key", t.Key, "status", t.Status)
	return t, nil
}

// fail records the cause on the tenant record. Recording can itself
// fail (for example on a version conflict); that is logged and
// swallowed because the original cause matters more to the caller.
func (s *Service) fail(ctx context.Context, t *tenant.Tenant, cause error) {
	if err := s.reg.MarkFailed(ctx, t, cause); err != nil {
		s.log.ErrorContext(ctx, "failed to record tenant failure",
			"tenant_id", t.ID, "cause", cause, "error", err)
	}
	tenant.InvalidateTenant(ctx, s.cache, t)
}

func (s *Service) checkPlan(plan string) error {
	if s.plans == nil || plan == "" {
		return nil
	}
	if !s.plans.Has(plan) {
		return errors.Join(ErrPlanUnknown, errors.New("plan "+plan))
	}
	return nil
}
