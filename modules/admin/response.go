package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/provision"
	"github.com/dmitrymomot/tenantkit/pkg/registry"
	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Response is the JSON envelope every endpoint writes. Data and Error
// can coexist: a failed provision still reports the record it created
// so the operator can retry it by ID.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail carries the machine-readable error code and a
// human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorResponse maps err to an HTTP status and envelope. Internal
// failures are reported with a generic message so database and schema
// details never reach the client.
func errorResponse(err error) (int, Response) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return status, Response{Error: &ErrorDetail{Code: code, Message: msg}}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, tenant.ErrTenantNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, registry.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, registry.ErrVersionConflict):
		return http.StatusConflict, "version_conflict"
	case errors.Is(err, tenant.ErrInvalidTransition),
		errors.Is(err, provision.ErrNotRetryable),
		errors.Is(err, provision.ErrNotPurgeable),
		errors.Is(err, provision.ErrNotMigratable):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, provision.ErrPlanUnknown):
		return http.StatusUnprocessableEntity, "unknown_plan"
	case errors.Is(err, tenant.ErrInvalidIdentifier),
		errors.Is(err, tenant.ErrInvalidSchemaName):
		return http.StatusUnprocessableEntity, "invalid_identifier"
	case errors.Is(err, schema.ErrDropDisabled):
		return http.StatusForbidden, "drop_disabled"
	case errors.Is(err, schema.ErrDropNotConfirmed):
		return http.StatusPreconditionFailed, "drop_not_confirmed"
	}
	return http.StatusInternalServerError, "internal_error"
}
