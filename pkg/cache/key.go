package cache

import (
	"fmt"
	"strings"
)

// PageKey identifies one page of a products query.
type PageKey struct {
	// Endpoint is the GraphQL endpoint host and path
	// (e.g. "shop.myshopify.com/api/2023-10/graphql.json")
	Endpoint string

	// Limit is the requested page size
	Limit int

	// Cursor is the cursor the page starts after ("" for the first page)
	Cursor string
}

// String generates a deterministic cache key string.
// Format: catalog:endpoint:first=N:after=cursor
//
// Example:
//
//	catalog:shop.myshopify.com/api/2023-10/graphql.json:first=50:after=
func (k PageKey) String() string {
	parts := []string{"catalog"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	parts = append(parts,
		fmt.Sprintf("first=%d", k.Limit),
		fmt.Sprintf("after=%s", k.Cursor),
	)

	return strings.Join(parts, ":")
}

// EndpointPattern returns the Redis SCAN pattern matching every page key of
// endpoint. Glob metacharacters in endpoint are escaped.
func EndpointPattern(endpoint string) string {
	var b strings.Builder
	for _, r := range strings.Trim(endpoint, "/") {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return "catalog:" + b.String() + ":first=*"
}
