package tenant

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Resolver extracts a tenant identifier from an HTTP request.
type Resolver interface {
	// Resolve extracts the tenant identifier from the request.
	// Returns empty string if no tenant identifier is present.
	// Returns an error if an identifier was presented but could not be
	// extracted; such errors must not fall through to weaker strategies.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as Resolvers.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver extracts the tenant identifier from an HTTP header.
type HeaderResolver struct {
	// HeaderName is the name of the header to read (e.g. "X-Tenant-ID").
	HeaderName string
}

// NewHeaderResolver creates a new header resolver.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve extracts the tenant identifier from the configured header.
func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return strings.TrimSpace(req.Header.Get(r.HeaderName)), nil
}

// ClaimsFunc extracts verified token claims from the request.
// Implementations typically read claims parsed and validated by an
// upstream authentication middleware.
type ClaimsFunc func(r *http.Request) (map[string]any, error)

// ClaimResolver extracts the tenant identifier from an authenticated
// token claim.
type ClaimResolver struct {
	// Claims retrieves the verified claims for the request.
	Claims ClaimsFunc
	// Claim is the claim name holding the tenant identifier (e.g. "tenant").
	Claim string
}

// NewClaimResolver creates a new claim resolver.
func NewClaimResolver(claims ClaimsFunc, claim string) *ClaimResolver {
	if claim == "" {
		claim = "tenant"
	}
	return &ClaimResolver{Claims: claims, Claim: claim}
}

// Resolve extracts the tenant identifier from token claims.
func (r *ClaimResolver) Resolve(req *http.Request) (string, error) {
	if r.Claims == nil {
		return "", errors.New("claim resolver: Claims function not configured")
	}

	claims, err := r.Claims(req)
	if err != nil {
		return "", fmt.Errorf("claim resolver: %w", err)
	}
	if claims == nil {
		return "", nil
	}

	value, ok := claims[r.Claim]
	if !ok || value == nil {
		return "", nil
	}
	identifier, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("claim resolver: claim %q is not a string", r.Claim)
	}
	return identifier, nil
}

// SubdomainResolver extracts the tenant identifier from the request host.
type SubdomainResolver struct {
	// Suffix is the shared base domain to strip (e.g. ".saas.example.com").
	// If empty, the leftmost label of any host with at least three labels
	// is used.
	Suffix string
}

// NewSubdomainResolver creates a new subdomain resolver.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

// Resolve extracts the tenant label from the host
// (e.g. "acme" from "acme.saas.example.com").
func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := normalizeHost(req.Host)
	if host == "" {
		return "", nil
	}

	if r.Suffix != "" {
		suffix := strings.ToLower(strings.Trim(r.Suffix, "."))
		rest, ok := strings.CutSuffix(host, "."+suffix)
		if !ok || rest == "" {
			return "", nil
		}
		// The label adjacent to the suffix identifies the tenant; deeper
		// labels belong to the tenant's own namespace.
		parts := strings.Split(rest, ".")
		label := parts[len(parts)-1]
		if label == "www" {
			return "", nil
		}
		return label, nil
	}

	host = strings.TrimPrefix(host, "www.")
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		// Bare domain.tld carries no tenant label.
		return "", nil
	}
	return parts[0], nil
}

// normalizeHost strips the port and trailing dot and lowercases the host.
func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

// PathResolver extracts the tenant identifier from a URL path segment.
type PathResolver struct {
	// Position is the 1-based position in the path (e.g. 2 for /tenants/{id}/...).
	Position int
}

// NewPathResolver creates a new path resolver.
func NewPathResolver(position int) *PathResolver {
	return &PathResolver{Position: position}
}

// Resolve extracts the tenant identifier from the configured path position.
func (r *PathResolver) Resolve(req *http.Request) (string, error) {
	if r.Position < 1 {
		return "", errors.New("path resolver: invalid position")
	}

	path := strings.Trim(req.URL.Path, "/")
	if path == "" {
		return "", nil
	}

	parts := strings.Split(path, "/")
	if r.Position > len(parts) {
		return "", nil
	}
	return parts[r.Position-1], nil
}

// CompositeResolver tries multiple resolvers in precedence order.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a resolver that consults the given
// resolvers in order and returns the first non-empty identifier.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve tries each resolver in order. A resolver error aborts the
// chain immediately: an identifier that was presented but malformed
// must not silently fall through to a weaker strategy.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	for _, resolver := range c.Resolvers {
		identifier, err := resolver.Resolve(r)
		if err != nil {
			return "", err
		}
		if identifier != "" {
			return identifier, nil
		}
	}
	return "", nil
}
