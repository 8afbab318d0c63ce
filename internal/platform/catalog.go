// internal/platform/catalog.go
package platform

import (
	"context"
	"net/http"

	"storefront-gateway/internal/domain/catalog"
)

func (c *Client) ListProducts(ctx context.Context, filters map[string]string) (*catalog.Listing, error) {
	var listing catalog.Listing
	if err := c.do(ctx, http.MethodGet, queryPath("/products", filters), "", nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	var payload struct {
		Product *catalog.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+productID, "", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Product, nil
}
