// Package pagination drives cursor pagination over a storefront products
// connection and accumulates normalized catalog records.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(storefrontClient, pagination.DefaultConfig(), reporter)
//	products, err := fetcher.FetchAll(ctx)
//	if err != nil {
//		// products still holds every record fetched before the failure
//	}
//
// The fetcher:
//   - Requests pages strictly one after another, following endCursor
//   - Stops normally when a page reports hasNextPage=false
//   - Stops early on the first failed page and returns the partial catalog
//   - Stops with ErrPageLimit after MaxPages pages (0 disables the bound)
//   - Emits PageFetched/Stopped/Completed events to a Reporter
package pagination
