package storefront

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GraphQLError is one entry of the top-level "errors" list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// PageInfo is the pagination metadata of a products connection.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Money is a price as returned by the API. Amount is kept verbatim.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Variant is the subset of a product variant that is requested.
type Variant struct {
	Price *Money `json:"price"`
}

// Image is the subset of a product image that is requested.
type Image struct {
	URL string `json:"url"`
}

// ProductNode is a raw product as returned by the API.
type ProductNode struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variants    struct {
		Edges []struct {
			Node Variant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Images struct {
		Edges []struct {
			Node Image `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

// Page is one decoded page of products.
type Page struct {
	Nodes    []ProductNode
	PageInfo PageInfo
}

// NextCursor returns the end cursor or "" when absent.
func (p *Page) NextCursor() string {
	if p.PageInfo.EndCursor == nil {
		return ""
	}
	return *p.PageInfo.EndCursor
}

type productsResponse struct {
	Data *struct {
		Products *struct {
			PageInfo *PageInfo `json:"pageInfo"`
			Edges    []struct {
				Node ProductNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// decodePage decodes a 200 response body into a Page.
// A non-empty errors list yields a graphql APIError; a body that does not
// carry data.products.pageInfo yields a malformed APIError.
func decodePage(body []byte, statusCode int) (*Page, error) {
	var resp productsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{
			Kind:       ErrorKindMalformed,
			StatusCode: statusCode,
			Message:    "decode response body",
			Body:       string(body),
			Err:        err,
		}
	}

	if len(resp.Errors) > 0 {
		return nil, &APIError{
			Kind:          ErrorKindGraphQL,
			StatusCode:    statusCode,
			Message:       joinMessages(resp.Errors),
			Body:          string(body),
			GraphQLErrors: resp.Errors,
		}
	}

	if resp.Data == nil || resp.Data.Products == nil || resp.Data.Products.PageInfo == nil {
		return nil, &APIError{
			Kind:       ErrorKindMalformed,
			StatusCode: statusCode,
			Message:    "missing data.products.pageInfo",
			Body:       string(body),
			Err:        ErrMalformedResponse,
		}
	}

	products := resp.Data.Products
	page := &Page{
		Nodes:    make([]ProductNode, 0, len(products.Edges)),
		PageInfo: *products.PageInfo,
	}
	for _, edge := range products.Edges {
		page.Nodes = append(page.Nodes, edge.Node)
	}
	return page, nil
}

func joinMessages(errs []GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Sprintf("%d graphql error(s): %s", len(errs), strings.Join(msgs, "; "))
}
