// Package plans carries the billing-plan catalog tenants are created
// against.
//
// The catalog is a YAML document parsed once at startup (typically from
// an embedded file) and handed to the provisioning service, which
// refuses to create or move tenants onto plan IDs the catalog does not
// know. Plans are metadata only: names, limits, and feature flags for
// display and for the consuming application's own enforcement. Nothing
// in this package talks to a payment provider.
//
//	catalog, err := plans.Parse(plansYAML)
//	if err != nil {
//	    return err
//	}
//	svc := provision.New(store, manager, provision.WithPlans(catalog))
//
// A tenant's plan field stores the catalog ID as an opaque string, so
// removing a plan from the catalog never breaks existing tenants; it
// only stops new assignments.
package plans
