package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/storefront-catalog/pkg/catalog"
	"github.com/Sternrassler/storefront-catalog/pkg/storefront"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrPageLimit is returned when MaxPages pages were fetched and the
	// storefront still reports more.
	ErrPageLimit = errors.New("page limit reached")

	// ErrMissingCursor is returned when a page reports more pages but no
	// end cursor to continue from.
	ErrMissingCursor = errors.New("next page reported without end cursor")
)

var (
	catalogPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_pages_total",
		Help: "Total storefront pages processed",
	})

	catalogProductsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_total",
		Help: "Total product records accumulated",
	})
)

// DefaultMaxPages bounds a single run.
const DefaultMaxPages = 1000

// Config holds fetch loop configuration
type Config struct {
	// PageSize is the number of products requested per page
	PageSize int

	// MaxPages stops the loop after this many pages; 0 means unbounded
	MaxPages int
}

// DefaultConfig returns the default loop configuration
func DefaultConfig() Config {
	return Config{
		PageSize: storefront.DefaultPageSize,
		MaxPages: DefaultMaxPages,
	}
}

// PageFetcher fetches a single page of products after cursor.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string, limit int) (*storefront.Page, error)
}

// Fetcher runs the pagination loop against a PageFetcher
type Fetcher struct {
	fetcher  PageFetcher
	config   Config
	reporter Reporter
}

// NewFetcher creates a new fetcher. A nil reporter discards events.
func NewFetcher(fetcher PageFetcher, config Config, reporter Reporter) *Fetcher {
	if config.PageSize <= 0 {
		config.PageSize = storefront.DefaultPageSize
	}
	if config.MaxPages < 0 {
		config.MaxPages = 0
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Fetcher{
		fetcher:  fetcher,
		config:   config,
		reporter: reporter,
	}
}

// FetchAll follows the cursor until the storefront reports no next page.
//
// The returned slice is never nil and holds records in fetch order. When the
// loop stops early the error describes why and the slice holds every record
// fetched before that point.
func (f *Fetcher) FetchAll(ctx context.Context) ([]catalog.Product, error) {
	products := []catalog.Product{}
	cursor := ""
	hasNextPage := true
	pages := 0

	for hasNextPage {
		if f.config.MaxPages > 0 && pages >= f.config.MaxPages {
			err := fmt.Errorf("%w: %d pages", ErrPageLimit, pages)
			f.reporter.Stopped(pages+1, len(products), err)
			return products, err
		}

		page, err := f.fetcher.FetchPage(ctx, cursor, f.config.PageSize)
		if err != nil {
			err = fmt.Errorf("fetch page %d: %w", pages+1, err)
			f.reporter.Stopped(pages+1, len(products), err)
			return products, err
		}
		pages++

		products = append(products, catalog.ProjectAll(page.Nodes)...)
		catalogPagesTotal.Inc()
		catalogProductsTotal.Add(float64(len(page.Nodes)))
		f.reporter.PageFetched(pages, len(page.Nodes), len(products))

		hasNextPage = page.PageInfo.HasNextPage
		cursor = page.NextCursor()

		if hasNextPage && cursor == "" {
			err := fmt.Errorf("fetch page %d: %w", pages, ErrMissingCursor)
			f.reporter.Stopped(pages+1, len(products), err)
			return products, err
		}
	}

	f.reporter.Completed(pages, len(products))
	return products, nil
}
