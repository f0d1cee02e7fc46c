package tenant

import (
	"net/http"
	"strings"
)

// Resolver extracts a tenant identifier from an HTTP request.
type Resolver interface {
	// Resolve returns the tenant identifier for the request.
	// An empty string means no identifier was found.
	Resolve(r *http.Request) (string, error)
}

// HeaderResolver extracts the tenant identifier from an HTTP header.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver. Defaults to "X-Tenant-ID"
// when headerName is empty.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return req.Header.Get(r.HeaderName), nil
}

// SubdomainResolver extracts the tenant identifier from the request
// subdomain (e.g. "acme" from "acme.app.example.com").
type SubdomainResolver struct {
	// Suffix to strip from the host (e.g. ".app.example.com").
	Suffix string
}

// NewSubdomainResolver creates a subdomain resolver.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := req.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	if r.Suffix != "" {
		if !strings.HasSuffix(host, r.Suffix) {
			return "", nil
		}
		host = strings.TrimSuffix(host, r.Suffix)
	}

	parts := strings.Split(host, ".")
	if len(parts) == 0 || parts[0] == "" || parts[0] == "www" {
		return "", nil
	}

	// Bare domains like "example.com" carry no tenant.
	if r.Suffix == "" && len(parts) < 3 {
		return "", nil
	}

	return parts[0], nil
}

// ChainResolver tries each resolver in order and returns the first
// non-empty identifier.
type ChainResolver struct {
	resolvers []Resolver
}

// NewChainResolver creates a resolver that falls through the given
// resolvers in order.
func NewChainResolver(resolvers ...Resolver) *ChainResolver {
	return &ChainResolver{resolvers: resolvers}
}

func (r *ChainResolver) Resolve(req *http.Request) (string, error) {
	for _, resolver := range r.resolvers {
		identifier, err := resolver.Resolve(req)
		if err != nil {
			return "", err
		}
		if identifier != "" {
			return identifier, nil
		}
	}
	return "", nil
}
