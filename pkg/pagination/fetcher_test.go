package pagination

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Sternrassler/storefront-catalog/internal/testutil"
	"github.com/Sternrassler/storefront-catalog/pkg/storefront"
)

// scriptedFetcher returns pages (or errors) in order and records cursors.
type scriptedFetcher struct {
	pages   []*storefront.Page
	errs    []error
	cursors []string
	limits  []int
}

func (s *scriptedFetcher) FetchPage(ctx context.Context, cursor string, limit int) (*storefront.Page, error) {
	i := len(s.cursors)
	s.cursors = append(s.cursors, cursor)
	s.limits = append(s.limits, limit)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.pages) {
		return nil, fmt.Errorf("unexpected request %d", i+1)
	}
	return s.pages[i], nil
}

func makePage(n int, hasNext bool, cursor string) *storefront.Page {
	page := &storefront.Page{PageInfo: storefront.PageInfo{HasNextPage: hasNext}}
	if cursor != "" {
		page.PageInfo.EndCursor = &cursor
	}
	for i := 0; i < n; i++ {
		page.Nodes = append(page.Nodes, storefront.ProductNode{Title: fmt.Sprintf("%s-%d", cursor, i)})
	}
	return page
}

// recordingReporter captures events for assertions.
type recordingReporter struct {
	fetched   [][3]int
	stopped   []error
	completed [][2]int
}

func (r *recordingReporter) PageFetched(page, count, total int) {
	r.fetched = append(r.fetched, [3]int{page, count, total})
}

func (r *recordingReporter) Stopped(page, total int, err error) {
	r.stopped = append(r.stopped, err)
}

func (r *recordingReporter) Completed(pages, total int) {
	r.completed = append(r.completed, [2]int{pages, total})
}

func TestNewFetcher_Defaults(t *testing.T) {
	f := NewFetcher(&scriptedFetcher{}, Config{PageSize: 0, MaxPages: -1}, nil)

	if f.config.PageSize != storefront.DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", f.config.PageSize, storefront.DefaultPageSize)
	}
	if f.config.MaxPages != 0 {
		t.Errorf("MaxPages = %d, want 0", f.config.MaxPages)
	}
	if _, ok := f.reporter.(NopReporter); !ok {
		t.Errorf("reporter = %T, want NopReporter", f.reporter)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, DefaultMaxPages)
	}
}

func TestFetchAll_SumsPages(t *testing.T) {
	tests := []struct {
		name      string
		pages     []*storefront.Page
		errs      []error
		wantCount int
		wantErr   bool
	}{
		{
			name:      "single page",
			pages:     []*storefront.Page{makePage(3, false, "")},
			wantCount: 3,
		},
		{
			name:      "three pages",
			pages:     []*storefront.Page{makePage(2, true, "a"), makePage(2, true, "b"), makePage(1, false, "c")},
			wantCount: 5,
		},
		{
			name:      "empty store",
			pages:     []*storefront.Page{makePage(0, false, "")},
			wantCount: 0,
		},
		{
			name:      "error on second page keeps first",
			pages:     []*storefront.Page{makePage(4, true, "a")},
			errs:      []error{nil, errors.New("boom")},
			wantCount: 4,
			wantErr:   true,
		},
		{
			name:      "error on first page",
			errs:      []error{errors.New("boom")},
			wantCount: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedFetcher{pages: tt.pages, errs: tt.errs}
			products, err := NewFetcher(src, DefaultConfig(), nil).FetchAll(context.Background())

			if (err != nil) != tt.wantErr {
				t.Fatalf("FetchAll() error = %v, wantErr %v", err, tt.wantErr)
			}
			if products == nil {
				t.Fatal("FetchAll() returned nil slice")
			}
			if len(products) != tt.wantCount {
				t.Errorf("len(products) = %d, want %d", len(products), tt.wantCount)
			}
		})
	}
}

func TestFetchAll_FollowsCursor(t *testing.T) {
	src := &scriptedFetcher{pages: []*storefront.Page{
		makePage(1, true, "a"),
		makePage(1, true, "b"),
		makePage(1, false, "c"),
	}}

	_, err := NewFetcher(src, Config{PageSize: 10}, nil).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	wantCursors := []string{"", "a", "b"}
	if strings.Join(src.cursors, ",") != strings.Join(wantCursors, ",") {
		t.Errorf("cursors = %q, want %q", src.cursors, wantCursors)
	}
	for i, limit := range src.limits {
		if limit != 10 {
			t.Errorf("request %d limit = %d, want 10", i+1, limit)
		}
	}
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	src := &scriptedFetcher{pages: []*storefront.Page{
		makePage(2, true, "a"),
		makePage(2, false, "b"),
	}}

	products, _ := NewFetcher(src, DefaultConfig(), nil).FetchAll(context.Background())

	want := []string{"a-0", "a-1", "b-0", "b-1"}
	for i, p := range products {
		if p.Name != want[i] {
			t.Errorf("products[%d].Name = %q, want %q", i, p.Name, want[i])
		}
	}
}

func TestFetchAll_PageLimit(t *testing.T) {
	src := &scriptedFetcher{pages: []*storefront.Page{
		makePage(1, true, "a"),
		makePage(1, true, "b"),
		makePage(1, true, "c"),
	}}
	reporter := &recordingReporter{}

	products, err := NewFetcher(src, Config{MaxPages: 2}, reporter).FetchAll(context.Background())

	if !errors.Is(err, ErrPageLimit) {
		t.Fatalf("error = %v, want ErrPageLimit", err)
	}
	if len(products) != 2 {
		t.Errorf("len(products) = %d, want 2", len(products))
	}
	if len(src.cursors) != 2 {
		t.Errorf("requests = %d, want 2", len(src.cursors))
	}
	if len(reporter.stopped) != 1 || len(reporter.completed) != 0 {
		t.Errorf("events: stopped=%d completed=%d", len(reporter.stopped), len(reporter.completed))
	}
}

func TestFetchAll_Unbounded(t *testing.T) {
	pages := make([]*storefront.Page, 0, 5)
	for i := 0; i < 4; i++ {
		pages = append(pages, makePage(1, true, fmt.Sprintf("p%d", i)))
	}
	pages = append(pages, makePage(1, false, "last"))

	products, err := NewFetcher(&scriptedFetcher{pages: pages}, Config{MaxPages: 0}, nil).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(products) != 5 {
		t.Errorf("len(products) = %d, want 5", len(products))
	}
}

func TestFetchAll_MissingCursor(t *testing.T) {
	src := &scriptedFetcher{pages: []*storefront.Page{makePage(2, true, "")}}

	products, err := NewFetcher(src, DefaultConfig(), nil).FetchAll(context.Background())

	if !errors.Is(err, ErrMissingCursor) {
		t.Fatalf("error = %v, want ErrMissingCursor", err)
	}
	if len(products) != 2 {
		t.Errorf("len(products) = %d, want 2", len(products))
	}
	if len(src.cursors) != 1 {
		t.Errorf("requests = %d, want 1", len(src.cursors))
	}
}

func TestFetchAll_ReporterEvents(t *testing.T) {
	src := &scriptedFetcher{pages: []*storefront.Page{
		makePage(2, true, "a"),
		makePage(3, false, "b"),
	}}
	reporter := &recordingReporter{}

	if _, err := NewFetcher(src, DefaultConfig(), reporter).FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	wantFetched := [][3]int{{1, 2, 2}, {2, 3, 5}}
	if len(reporter.fetched) != len(wantFetched) {
		t.Fatalf("PageFetched events = %v, want %v", reporter.fetched, wantFetched)
	}
	for i := range wantFetched {
		if reporter.fetched[i] != wantFetched[i] {
			t.Errorf("PageFetched[%d] = %v, want %v", i, reporter.fetched[i], wantFetched[i])
		}
	}
	if len(reporter.completed) != 1 || reporter.completed[0] != [2]int{2, 5} {
		t.Errorf("Completed events = %v, want [[2 5]]", reporter.completed)
	}
	if len(reporter.stopped) != 0 {
		t.Errorf("Stopped events = %v, want none", reporter.stopped)
	}
}

func newMockClient(t *testing.T, mock *testutil.MockStorefront) *storefront.Client {
	t.Helper()
	cfg := storefront.DefaultConfig("test-shop", "test-token")
	cfg.EndpointURL = mock.URL()
	client, err := storefront.New(cfg)
	if err != nil {
		t.Fatalf("storefront.New() error = %v", err)
	}
	return client
}

func TestFetchAll_TwoPagesAgainstStorefront(t *testing.T) {
	mock := testutil.NewMockStorefront(
		testutil.NewPageResponse(true, "c1",
			testutil.MockProduct{Title: "One", Amount: "19.99", Currency: "USD", ImageURLs: []string{"i1", "i2"}},
			testutil.MockProduct{Title: "Two", NoVariant: true},
		),
		testutil.NewPageResponse(false, "c2",
			testutil.MockProduct{Title: "Three", Amount: "7", Currency: "EUR"},
		),
	)
	defer mock.Close()

	products, err := NewFetcher(newMockClient(t, mock), DefaultConfig(), nil).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("len(products) = %d, want 3", len(products))
	}
	if mock.RequestCount() != 2 {
		t.Errorf("requests = %d, want 2", mock.RequestCount())
	}
	if q := mock.Queries()[1]; !strings.Contains(q, `after: "c1"`) {
		t.Errorf("second query does not continue after c1:\n%s", q)
	}
	if q := mock.Queries()[0]; strings.Contains(q, "after:") {
		t.Errorf("first query should not carry a cursor:\n%s", q)
	}

	if products[0].Price != "19.99 USD" || len(products[0].Images) != 1 || products[0].Images[0] != "i2" {
		t.Errorf("products[0] = %+v", products[0])
	}
	if products[1].Price != "not available" {
		t.Errorf("products[1].Price = %q", products[1].Price)
	}
	if products[2].Name != "Three" {
		t.Errorf("products[2].Name = %q", products[2].Name)
	}
}

func TestFetchAll_ServerErrorOnFirstPage(t *testing.T) {
	mock := testutil.NewMockStorefront(testutil.NewServerErrorResponse())
	defer mock.Close()

	products, err := NewFetcher(newMockClient(t, mock), DefaultConfig(), nil).FetchAll(context.Background())

	if storefront.KindOf(err) != storefront.ErrorKindHTTPStatus {
		t.Fatalf("error = %v, want http_status APIError", err)
	}
	if len(products) != 0 {
		t.Errorf("len(products) = %d, want 0", len(products))
	}
	if mock.RequestCount() != 1 {
		t.Errorf("requests = %d, want 1", mock.RequestCount())
	}
}

func TestFetchAll_GraphQLErrorKeepsPartial(t *testing.T) {
	mock := testutil.NewMockStorefront(
		testutil.NewPageResponse(true, "c1",
			testutil.MockProduct{Title: "One"},
			testutil.MockProduct{Title: "Two"},
		),
		testutil.NewGraphQLErrorResponse("Throttled"),
	)
	defer mock.Close()

	products, err := NewFetcher(newMockClient(t, mock), DefaultConfig(), nil).FetchAll(context.Background())

	if storefront.KindOf(err) != storefront.ErrorKindGraphQL {
		t.Fatalf("error = %v, want graphql APIError", err)
	}
	if len(products) != 2 {
		t.Errorf("len(products) = %d, want 2", len(products))
	}
}
