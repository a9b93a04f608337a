package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/provision"
	"github.com/dmitrymomot/tenantkit/pkg/registry"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// maxBodySize caps request bodies; settings documents are small.
const maxBodySize = 1 << 20

type provisionRequest struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Subdomain string          `json:"subdomain"`
	Plan      string          `json:"plan"`
	Settings  json.RawMessage `json:"settings,omitempty"`
}

type updateRequest struct {
	Name      *string `json:"name"`
	Subdomain *string `json:"subdomain"`
	Plan      *string `json:"plan"`
}

type purgeRequest struct {
	Confirm string `json:"confirm"`
}

func (a *API) provision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Key == "" {
		a.fail(w, r, errors.Join(ErrValidation, errors.New("key is required")))
		return
	}
	if req.Name == "" {
		a.fail(w, r, errors.Join(ErrValidation, errors.New("name is required")))
		return
	}

	t, err := a.svc.Provision(r.Context(), provision.NewTenantParams{
		Key:       req.Key,
		Name:      req.Name,
		Subdomain: req.Subdomain,
		Plan:      req.Plan,
		Settings:  req.Settings,
	})
	if err != nil {
		// The record may exist in failed status even though provisioning
		// did not finish; return it so the operator can retry by ID.
		status, body := errorResponse(err)
		if t != nil && t.ID != uuid.Nil {
			body.Data = t
		}
		if status >= http.StatusInternalServerError {
			a.log.ErrorContext(r.Context(), "tenant provisioning failed", logger.Error(err))
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Data: t})
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	t, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: t})
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	tenants, err := a.svc.List(r.Context(), f)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Data: tenants,
		Meta: map[string]any{"count": len(tenants)},
	})
}

func (a *API) update(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Name == nil && req.Subdomain == nil && req.Plan == nil {
		a.fail(w, r, errors.Join(ErrValidation, errors.New("nothing to update")))
		return
	}

	t, err := a.svc.Update(r.Context(), id, provision.UpdateParams{
		Name:      req.Name,
		Subdomain: req.Subdomain,
		Plan:      req.Plan,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: t})
}

func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	t, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: json.RawMessage(t.Settings)})
}

func (a *API) updateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	// The body is the settings document itself, not an envelope.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		a.fail(w, r, errors.Join(ErrInvalidBody, err))
		return
	}
	if !json.Valid(body) {
		a.fail(w, r, errors.Join(ErrInvalidBody, errors.New("settings must be a JSON document")))
		return
	}

	t, err := a.svc.UpdateSettings(r.Context(), id, body)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: t})
}

func (a *API) suspend(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.svc.Suspend)
}

func (a *API) resume(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.svc.Resume)
}

func (a *API) softDelete(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.svc.SoftDelete)
}

func (a *API) retry(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.svc.Retry)
}

func (a *API) migrate(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.svc.Migrate)
}

func (a *API) migrateAll(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.MigrateAll(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) purge(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req purgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	t, err := a.svc.Purge(r.Context(), id, req.Confirm)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: t})
}

func (a *API) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)) {
	id, err := tenantID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	t, err := op(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: t})
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "admin request failed",
			"method", r.Method, "path", r.URL.Path, logger.Error(err))
	}
	writeJSON(w, status, body)
}

func tenantID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidID, err)
	}
	return id, nil
}

func parseFilter(r *http.Request) (registry.Filter, error) {
	var f registry.Filter
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := tenant.Status(s)
		if !status.Valid() {
			return f, errors.Join(ErrInvalidQuery, errors.New("unknown status "+s))
		}
		f.Status = status
	}
	f.Plan = q.Get("plan")

	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Join(ErrInvalidQuery, errors.New("expected a non-negative integer, got "+raw))
	}
	return n, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrInvalidBody, err)
	}
	return nil
}
