// Package testutil provides testing utilities for the storefront catalog.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockResponse defines one scripted response of the mock storefront.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockProduct is the minimal description of a product node to render.
type MockProduct struct {
	Title       string
	Description string
	Amount      string
	Currency    string
	NoVariant   bool
	ImageURLs   []string
}

// MockStorefront is a scripted GraphQL storefront for tests. Each request
// consumes the next scripted response; requests beyond the script get the
// last response again.
type MockStorefront struct {
	server *httptest.Server

	mu        sync.RWMutex
	responses []MockResponse
	queries   []string
	headers   []http.Header
}

// NewMockStorefront creates a mock storefront serving responses in order.
func NewMockStorefront(responses ...MockResponse) *MockStorefront {
	mock := &MockStorefront{
		responses: responses,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the GraphQL endpoint URL of the mock.
func (m *MockStorefront) URL() string {
	return m.server.URL + "/api/2023-10/graphql.json"
}

// Close shuts down the mock server.
func (m *MockStorefront) Close() {
	m.server.Close()
}

// RequestCount returns the number of requests received.
func (m *MockStorefront) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queries)
}

// Queries returns the GraphQL query strings received, in order.
func (m *MockStorefront) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.queries...)
}

// LastHeaders returns the headers of the most recent request.
func (m *MockStorefront) LastHeaders() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.headers) == 0 {
		return nil
	}
	return m.headers[len(m.headers)-1]
}

func (m *MockStorefront) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Query string `json:"query"`
	}
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &payload)

	m.mu.Lock()
	idx := len(m.queries)
	m.queries = append(m.queries, payload.Query)
	m.headers = append(m.headers, r.Header.Clone())
	m.mu.Unlock()

	if len(m.responses) == 0 {
		http.Error(w, "no scripted response", http.StatusInternalServerError)
		return
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	resp := m.responses[idx]

	w.Header().Set("Content-Type", "application/json")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, resp.Body)
}

// NewPageResponse renders a 200 products page. An empty endCursor renders
// a null cursor.
func NewPageResponse(hasNextPage bool, endCursor string, products ...MockProduct) MockResponse {
	type edge struct {
		Node map[string]any `json:"node"`
	}

	edges := make([]edge, 0, len(products))
	for _, p := range products {
		variants := []map[string]any{}
		if !p.NoVariant {
			variants = append(variants, map[string]any{
				"node": map[string]any{
					"price": map[string]any{
						"amount":       p.Amount,
						"currencyCode": p.Currency,
					},
				},
			})
		}
		images := []map[string]any{}
		for _, u := range p.ImageURLs {
			images = append(images, map[string]any{"node": map[string]any{"url": u}})
		}
		edges = append(edges, edge{Node: map[string]any{
			"title":       p.Title,
			"description": p.Description,
			"variants":    map[string]any{"edges": variants},
			"images":      map[string]any{"edges": images},
		}})
	}

	var cursor any
	if endCursor != "" {
		cursor = endCursor
	}

	body, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			"products": map[string]any{
				"pageInfo": map[string]any{
					"hasNextPage": hasNextPage,
					"endCursor":   cursor,
				},
				"edges": edges,
			},
		},
	})

	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}
}

// NewGraphQLErrorResponse renders a 200 response carrying an errors list.
func NewGraphQLErrorResponse(messages ...string) MockResponse {
	errs := make([]string, 0, len(messages))
	for _, msg := range messages {
		quoted, _ := json.Marshal(msg)
		errs = append(errs, fmt.Sprintf(`{"message":%s}`, quoted))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"errors":[%s]}`, strings.Join(errs, ",")),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewUnauthorizedResponse creates a 401 response as sent for a bad token.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"errors":"[API] Invalid API key or access token (unrecognized login or wrong password)"}`,
	}
}
