package storefront

import (
	"encoding/json"
	"fmt"
)

// DefaultPageSize is the number of products requested per page.
const DefaultPageSize = 50

// ProductsQuery builds the products query for one page. An empty cursor
// requests the first page; otherwise records strictly after cursor.
// A non-positive limit falls back to DefaultPageSize.
func ProductsQuery(cursor string, limit int) string {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	after := ""
	if cursor != "" {
		quoted, _ := json.Marshal(cursor)
		after = fmt.Sprintf(", after: %s", quoted)
	}

	return fmt.Sprintf(`{
  products(first: %d%s) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        title
        description
        variants(first: 1) {
          edges {
            node {
              price {
                amount
                currencyCode
              }
            }
          }
        }
        images(first: 2) {
          edges {
            node {
              url
            }
          }
        }
      }
    }
  }
}`, limit, after)
}
