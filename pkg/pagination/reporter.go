package pagination

// Reporter receives progress events from the fetch loop.
type Reporter interface {
	// PageFetched is called after page (1-based) added count records,
	// bringing the catalog to total.
	PageFetched(page, count, total int)

	// Stopped is called when the loop ends early while requesting page.
	Stopped(page, total int, err error)

	// Completed is called when the last page has been processed.
	Completed(pages, total int)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) PageFetched(page, count, total int) {}
func (NopReporter) Stopped(page, total int, err error) {}
func (NopReporter) Completed(pages, total int) {}
