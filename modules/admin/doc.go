// Package admin exposes the tenant lifecycle over a JSON HTTP API for
// operators: provisioning, status transitions, settings management,
// schema migration, and the destructive purge path.
//
// The API wraps a lifecycle service (normally *provision.Service) and
// translates its sentinel errors into HTTP statuses: conflicts and
// illegal transitions map to 409, unknown plans to 422, the purge
// latches to 403 and 412, and anything unexpected to 500 with the
// detail kept in the logs rather than the response.
//
// # Usage
//
//	svc := provision.New(store, manager,
//		provision.WithCache(cache),
//		provision.WithPlans(catalog),
//	)
//	api := admin.New(svc, admin.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Mount("/admin/v1", api.Handle())
//
// Every mutating endpoint is fully driven by the service, so the same
// invariants hold whether a tenant is changed here or programmatically:
// schemas and registry rows move together, and the resolution cache is
// invalidated on every mutation.
//
// The module ships no authentication. Mount it behind whatever guards
// operator traffic in the host application.
package admin
