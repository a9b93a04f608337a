// Package provision orchestrates the tenant lifecycle end to end:
// registry records and database schemas move through their statuses
// together.
//
// Provisioning runs creating -> provisioning -> active. The record
// exists and is visible from the first step, but the resolution layer
// refuses to route to it until it reaches active, so requests can never
// land in a schema that is still being built. When schema creation or
// migration fails, the tenant is parked in the failed status with the
// cause recorded on the record; Retry resumes from there and completes
// the half-built schema instead of starting over.
//
// Deletion takes two separate calls. SoftDelete removes the tenant from
// rotation but keeps all data; Purge then drops the schema and requires
// the caller to repeat the schema name, because there is no undo.
//
//	svc := provision.New(store, manager,
//	    provision.WithCache(cache),
//	    provision.WithPlans(catalog),
//	    provision.WithLogger(log),
//	)
//
//	t, err := svc.Provision(ctx, provision.NewTenantParams{
//	    Key:  "acme",
//	    Name: "Acme Corp",
//	    Plan: "pro",
//	})
//
// Every mutation evicts the tenant from the resolution cache, so other
// instances pick up status changes before their cache TTL expires.
package provision
