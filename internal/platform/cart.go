// internal/platform/cart.go
package platform

import (
	"context"
	"net/http"

	"storefront-gateway/internal/domain/cart"
)

// cartData is the envelope payload for every cart endpoint: the server echoes
// the full resulting cart after each mutation.
type cartData struct {
	Cart *cart.Cart `json:"cart"`
}

func (c *Client) GetCart(ctx context.Context, token string) (*cart.Cart, error) {
	var payload cartData
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, token string, req *cart.AddItemRequest) (*cart.Cart, error) {
	var payload cartData
	if err := c.do(ctx, http.MethodPost, "/cart/items", token, req, &payload); err != nil {
		return nil, err
	}
	return payload.Cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, token, itemID string, quantity int) (*cart.Cart, error) {
	req := cart.UpdateItemRequest{Quantity: quantity}
	var payload cartData
	if err := c.do(ctx, http.MethodPatch, "/cart/items/"+itemID, token, &req, &payload); err != nil {
		return nil, err
	}
	return payload.Cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, token, itemID string) (*cart.Cart, error) {
	var payload cartData
	if err := c.do(ctx, http.MethodDelete, "/cart/items/"+itemID, token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Cart, nil
}

func (c *Client) ClearCart(ctx context.Context, token string) (*cart.Cart, error) {
	var payload cartData
	if err := c.do(ctx, http.MethodDelete, "/cart", token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Cart, nil
}
