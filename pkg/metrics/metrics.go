// Package metrics exposes the Prometheus metrics of a catalog export.
// Metrics are defined in their owning packages (storefront, pagination,
// cache) and registered via promauto on the default registry.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the exporter.
var Registry = prometheus.DefaultRegisterer

// NewRouter returns a router serving GET /metrics and GET /health.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Metrics Documentation
//
// Request Metrics (pkg/storefront):
//   - catalog_requests_total{status} (Counter): Page requests by HTTP status or "network_error"
//   - catalog_request_duration_seconds (Histogram): Page request duration
//   - catalog_errors_total{kind} (Counter): Failed page requests by kind (network, http_status, graphql, malformed)
//
// Pagination Metrics (pkg/pagination):
//   - catalog_pages_total (Counter): Pages processed
//   - catalog_products_total (Counter): Product records accumulated
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total (Counter): Page cache hits
//   - catalog_cache_misses_total (Counter): Page cache misses
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Products per page
//   rate(catalog_products_total[5m]) / rate(catalog_pages_total[5m])
//
//   # Cache Hit Rate
//   rate(catalog_cache_hits_total[5m]) /
//   (rate(catalog_cache_hits_total[5m]) + rate(catalog_cache_misses_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
