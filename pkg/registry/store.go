package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Querier is the slice of the pgx surface the registry needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so registry calls can join a
// caller's transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectTenant = `SELECT id, key, name, subdomain, schema_name, status, plan, settings, last_error, version, created_at, updated_at FROM tenants`

// selectTenantResolve is the resolution-path projection. It never loads
// the settings document: resolution results feed the shared cache, and
// settings must not leave the registry through that path.
const selectTenantResolve = `SELECT id, key, name, subdomain, schema_name, status, plan, NULL AS settings, last_error, version, created_at, updated_at FROM tenants`

// Tenants with error messages longer than this get them truncated
// before storage. The full error still reaches the logs.
const maxLastErrorLen = 2048

// Store persists tenant records in the shared registry schema. All
// mutations use optimistic concurrency: the row version must match the
// in-memory record, otherwise ErrVersionConflict is returned and the
// caller has to reload.
type Store struct {
	db          Querier
	settingsKey []byte
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSettingsKey enables settings encryption at rest. The key is the
// 32-byte app key; per-tenant keys are derived from it, so no key
// material is stored per tenant. Rows written before the key was
// configured stay readable as plaintext.
func WithSettingsKey(appKey []byte) StoreOption {
	return func(s *Store) {
		s.settingsKey = appKey
	}
}

// New creates a registry store on top of a pgx pool or transaction.
func New(db Querier, opts ...StoreOption) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store doubles as the tenant provider for request resolution.
var _ tenant.Provider = (*Store)(nil)

// Create inserts a new tenant record. The record's key, subdomain, and
// schema name must be unique across the registry, soft-deleted rows
// included; violations surface as ErrAlreadyExists. A zero ID and
// status are filled in with a fresh UUID and StatusCreating.
func (s *Store) Create(ctx context.Context, t *tenant.Tenant) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = tenant.StatusCreating
	}
	if err := tenant.ValidateIdentifier(t.Key); err != nil {
		return err
	}
	if t.Subdomain != "" {
		if err := tenant.ValidateIdentifier(t.Subdomain); err != nil {
			return err
		}
	}
	if err := tenant.ValidateSchemaName(t.SchemaName); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return errors.Join(tenant.ErrInvalidTransition, fmt.Errorf("unknown status %q", t.Status))
	}

	stored, err := encryptSettings(s.settingsKey, t.ID, t.Settings)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO tenants (id, key, name, subdomain, schema_name, status, plan, settings, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		RETURNING version, created_at, updated_at`

	err = s.db.QueryRow(ctx, q,
		t.ID, t.Key, t.Name, nullable(t.Subdomain), t.SchemaName, t.Status, t.Plan, stored,
	).Scan(&t.Version, &t.CreatedAt, &t.UpdatedAt)
	switch {
	case pg.IsDuplicateKeyError(err):
		return errors.Join(ErrAlreadyExists, err)
	case err != nil:
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

// GetByID loads a tenant by primary key, soft-deleted rows included.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.get(ctx, selectTenant+" WHERE id = $1", id)
}

// GetByKey loads a tenant by its stable key, soft-deleted rows included.
func (s *Store) GetByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	return s.get(ctx, selectTenant+" WHERE key = $1", key)
}

// GetBySubdomain loads a tenant by subdomain, soft-deleted rows included.
func (s *Store) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	return s.get(ctx, selectTenant+" WHERE subdomain = $1", subdomain)
}

// GetBySchemaName loads a tenant by its schema name, soft-deleted rows
// included. Schema names stay reserved after deletion, so this also
// answers "which tenant did this schema belong to".
func (s *Store) GetBySchemaName(ctx context.Context, schemaName string) (*tenant.Tenant, error) {
	return s.get(ctx, selectTenant+" WHERE schema_name = $1", schemaName)
}

// GetByIdentifier implements tenant.Provider for request resolution.
// The identifier may be a tenant key, a subdomain, or a UUID string.
// Soft-deleted tenants are reported as not found so that a recycled
// subdomain or key never routes to a dead record. The returned record
// carries no settings; resolution only needs routing fields.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.get(ctx, selectTenantResolve+" WHERE id = $1 AND status <> $2", id, tenant.StatusDeleted)
	}
	return s.get(ctx,
		selectTenantResolve+" WHERE (key = $1 OR subdomain = $1) AND status <> $2",
		identifier, tenant.StatusDeleted,
	)
}

// Filter narrows List and Count results. Zero fields match everything.
type Filter struct {
	Status tenant.Status
	Plan   string
	Limit  int
	Offset int
}

// List returns tenants matching the filter ordered by creation time.
func (s *Store) List(ctx context.Context, f Filter) ([]tenant.Tenant, error) {
	query, args := f.apply(selectTenant)
	query += " ORDER BY created_at, key"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, errors.Join(ErrQueryFailed, err)
		}
		if t.Settings, err = decryptSettings(s.settingsKey, t.ID, t.Settings); err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return tenants, nil
}

// Count returns the number of tenants matching the filter.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	query, args := f.apply("SELECT count(*) FROM tenants")
	var n int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return n, nil
}

func (f Filter) apply(query string) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Plan != "" {
		args = append(args, f.Plan)
		conds = append(conds, fmt.Sprintf("plan = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return query, args
}

// Transition moves a tenant to the next lifecycle status. The move must
// be legal per the status machine and the row must still carry the
// version the caller loaded; on success t is updated in place. Leaving
// the failed status clears the recorded error.
func (s *Store) Transition(ctx context.Context, t *tenant.Tenant, next tenant.Status) error {
	if !t.Status.CanTransitionTo(next) {
		return errors.Join(tenant.ErrInvalidTransition,
			fmt.Errorf("cannot move tenant %s from %s to %s", t.ID, t.Status, next))
	}

	// On the right-hand side of SET, status and last_error refer to the
	// pre-update row.
	const q = `
		UPDATE tenants
		SET status = $1,
		    last_error = CASE WHEN status = 'failed' THEN NULL ELSE last_error END,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $2 AND version = $3 AND status = $4
		RETURNING version, updated_at`

	err := s.db.QueryRow(ctx, q, next, t.ID, t.Version, t.Status).Scan(&t.Version, &t.UpdatedAt)
	switch {
	case pg.IsNotFoundError(err):
		return ErrVersionConflict
	case err != nil:
		return errors.Join(ErrQueryFailed, err)
	}
	if t.Status == tenant.StatusFailed {
		t.LastError = ""
	}
	t.Status = next
	return nil
}

// MarkFailed transitions a tenant to the failed status and records what
// went wrong, so operators can inspect and retry it later.
func (s *Store) MarkFailed(ctx context.Context, t *tenant.Tenant, cause error) error {
	if !t.Status.CanTransitionTo(tenant.StatusFailed) {
		return errors.Join(tenant.ErrInvalidTransition,
			fmt.Errorf("cannot fail tenant %s from status %s", t.ID, t.Status))
	}

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if len(msg) > maxLastErrorLen {
		msg = msg[:maxLastErrorLen]
	}

	const q = `
		UPDATE tenants
		SET status = $1, last_error = $2, version = version + 1, updated_at = now()
		WHERE id = $3 AND version = $4 AND status = $5
		RETURNING version, updated_at`

	err := s.db.QueryRow(ctx, q, tenant.StatusFailed, nullable(msg), t.ID, t.Version, t.Status).
		Scan(&t.Version, &t.UpdatedAt)
	switch {
	case pg.IsNotFoundError(err):
		return ErrVersionConflict
	case err != nil:
		return errors.Join(ErrQueryFailed, err)
	}
	t.Status = tenant.StatusFailed
	t.LastError = msg
	return nil
}

// Update persists the mutable descriptive fields: name, subdomain, and
// plan. The schema name is immutable and deliberately absent here.
func (s *Store) Update(ctx context.Context, t *tenant.Tenant) error {
	if t.Subdomain != "" {
		if err := tenant.ValidateIdentifier(t.Subdomain); err != nil {
			return err
		}
	}

	const q = `
		UPDATE tenants
		SET name = $1, subdomain = $2, plan = $3, version = version + 1, updated_at = now()
		WHERE id = $4 AND version = $5
		RETURNING version, updated_at`

	err := s.db.QueryRow(ctx, q, t.Name, nullable(t.Subdomain), t.Plan, t.ID, t.Version).
		Scan(&t.Version, &t.UpdatedAt)
	switch {
	case pg.IsDuplicateKeyError(err):
		return errors.Join(ErrAlreadyExists, err)
	case pg.IsNotFoundError(err):
		return ErrVersionConflict
	case err != nil:
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

// UpdateSettings replaces the tenant's settings document. With a
// settings key configured the document is encrypted before it reaches
// the database; t.Settings keeps the plaintext.
func (s *Store) UpdateSettings(ctx context.Context, t *tenant.Tenant, settings []byte) error {
	stored, err := encryptSettings(s.settingsKey, t.ID, settings)
	if err != nil {
		return err
	}

	const q = `
		UPDATE tenants
		SET settings = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at`

	err = s.db.QueryRow(ctx, q, stored, t.ID, t.Version).Scan(&t.Version, &t.UpdatedAt)
	switch {
	case pg.IsNotFoundError(err):
		return ErrVersionConflict
	case err != nil:
		return errors.Join(ErrQueryFailed, err)
	}
	t.Settings = settings
	return nil
}

func (s *Store) get(ctx context.Context, query string, args ...any) (*tenant.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx, query, args...))
	switch {
	case pg.IsNotFoundError(err):
		return nil, tenant.ErrTenantNotFound
	case err != nil:
		return nil, errors.Join(ErrQueryFailed, err)
	}
	if t.Settings, err = decryptSettings(s.settingsKey, t.ID, t.Settings); err != nil {
		return nil, err
	}
	return t, nil
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var (
		t         tenant.Tenant
		subdomain *string
		lastError *string
	)
	err := row.Scan(
		&t.ID, &t.Key, &t.Name, &subdomain, &t.SchemaName, &t.Status, &t.Plan,
		&t.Settings, &lastError, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if subdomain != nil {
		t.Subdomain = *subdomain
	}
	if lastError != nil {
		t.LastError = *lastError
	}
	return &t, nil
}

// nullable maps empty strings to NULL so that unique constraints on
// optional columns never collide on "".
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
