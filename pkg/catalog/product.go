// Package catalog holds the normalized product record, the projection from
// raw storefront nodes and the JSON file format of an exported catalog.
package catalog

import (
	"github.com/Sternrassler/storefront-catalog/pkg/storefront"
)

// PriceNotAvailable is the price of a product without a priced first variant.
const PriceNotAvailable = "not available"

// Product is one exported catalog record.
type Product struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Images      []string `json:"images"`
}

// Project maps a raw product node to a Product.
//
// Only the first variant is priced, formatted as "<amount> <currencyCode>"
// with the amount passed through verbatim. Of the returned image URLs only
// the last one is kept.
func Project(node storefront.ProductNode) Product {
	price := PriceNotAvailable
	if len(node.Variants.Edges) > 0 {
		if p := node.Variants.Edges[0].Node.Price; p != nil {
			price = p.Amount + " " + p.CurrencyCode
		}
	}

	images := make([]string, 0, 1)
	if n := len(node.Images.Edges); n > 0 {
		images = append(images, node.Images.Edges[n-1].Node.URL)
	}

	return Product{
		Name:        node.Title,
		Description: node.Description,
		Price:       price,
		Images:      images,
	}
}

// ProjectAll maps nodes in order.
func ProjectAll(nodes []storefront.ProductNode) []Product {
	products := make([]Product, 0, len(nodes))
	for _, node := range nodes {
		products = append(products, Project(node))
	}
	return products
}
