package storefront

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	// DomainSuffix is the canonical suffix of every storefront domain.
	DomainSuffix = ".myshopify.com"

	// DefaultAPIVersion is the Storefront API version used in the endpoint path.
	DefaultAPIVersion = "2023-10"

	// AccessTokenHeader carries the Storefront access token.
	AccessTokenHeader = "X-Shopify-Storefront-Access-Token"
)

// Endpoint is the immutable connection target of a storefront.
type Endpoint struct {
	// Domain is the normalized shop domain (always ends with DomainSuffix).
	Domain string

	// Token is the Storefront API access token.
	Token string

	// URL is the full GraphQL endpoint URL.
	URL string

	headers http.Header
}

// NewEndpoint normalizes domain and computes the endpoint URL and headers.
// An empty apiVersion falls back to DefaultAPIVersion.
func NewEndpoint(domain, token, apiVersion string) Endpoint {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	normalized := NormalizeDomain(domain)

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set(AccessTokenHeader, token)

	return Endpoint{
		Domain:  normalized,
		Token:   token,
		URL:     fmt.Sprintf("https://%s/api/%s/graphql.json", normalized, apiVersion),
		headers: headers,
	}
}

// Headers returns a copy of the request headers sent with every query.
func (e Endpoint) Headers() http.Header {
	return e.headers.Clone()
}

// NormalizeDomain lowercases raw, strips protocol prefixes and appends
// DomainSuffix when it is missing. Applying it to its own output returns the
// same value.
func NormalizeDomain(raw string) string {
	domain := strings.ToLower(strings.TrimSpace(raw))
	for {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
		if trimmed == domain {
			break
		}
		domain = trimmed
	}
	domain = strings.TrimRight(domain, "/")

	if !strings.HasSuffix(domain, DomainSuffix) {
		domain += DomainSuffix
	}
	return domain
}
