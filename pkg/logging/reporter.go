package logging

import (
	"errors"

	"github.com/Sternrassler/storefront-catalog/pkg/storefront"
	"github.com/rs/zerolog"
)

// Reporter writes pagination events to a zerolog logger.
type Reporter struct {
	logger zerolog.Logger
}

// NewReporter creates a Reporter logging to logger.
func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// PageFetched logs the per-page count and running total.
func (r *Reporter) PageFetched(page, count, total int) {
	r.logger.Info().
		Int("page", page).
		Int("page_count", count).
		Int("total", total).
		Msgf("Fetched %d products (Total: %d)", count, total)
}

// Stopped logs why the loop ended early, including the status code and raw
// body of failed requests.
func (r *Reporter) Stopped(page, total int, err error) {
	var apiErr *storefront.APIError
	if !errors.As(err, &apiErr) {
		r.logger.Warn().
			Err(err).
			Int("page", page).
			Int("total", total).
			Msg("Pagination stopped early, keeping fetched products")
		return
	}

	event := r.logger.Error().
		Err(err).
		Int("page", page).
		Int("total", total).
		Str("error_kind", string(apiErr.Kind))
	if apiErr.StatusCode != 0 {
		event = event.Int("status_code", apiErr.StatusCode)
	}
	if apiErr.Body != "" {
		event = event.Str("body", apiErr.Body)
	}
	if len(apiErr.GraphQLErrors) > 0 {
		event = event.Interface("graphql_errors", apiErr.GraphQLErrors)
	}
	event.Msg("Pagination stopped early, keeping fetched products")
}

// Completed logs the final page and record counts.
func (r *Reporter) Completed(pages, total int) {
	r.logger.Info().
		Int("pages", pages).
		Int("total", total).
		Msgf("Successfully fetched %d products total", total)
}
