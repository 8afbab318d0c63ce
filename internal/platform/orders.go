// internal/platform/orders.go
package platform

import (
	"context"
	"net/http"

	"storefront-gateway/internal/domain/order"
)

// CreateOrderData bundles the created order with the payment processor
// handoff (checkout URL, reference) the platform returns alongside it.
type CreateOrderData struct {
	Order   *order.Order   `json:"order"`
	Payment map[string]any `json:"payment,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, token string, req *order.CreateRequest) (*CreateOrderData, error) {
	var payload CreateOrderData
	if err := c.do(ctx, http.MethodPost, "/orders", token, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) ListOrders(ctx context.Context, token string, filters map[string]string) (*order.Page, error) {
	var page order.Page
	if err := c.do(ctx, http.MethodGet, queryPath("/orders", filters), token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetOrder(ctx context.Context, token, orderID string) (*order.Order, error) {
	var payload struct {
		Order *order.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Order, nil
}

// VerifyPayment confirms a payment reference after checkout redirect.
func (c *Client) VerifyPayment(ctx context.Context, token, reference string) (*order.Order, error) {
	var payload struct {
		Order *order.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/verify/"+reference, token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Order, nil
}

// TrackOrder is public: no bearer token required.
func (c *Client) TrackOrder(ctx context.Context, trackingNumber string) (*order.Tracking, error) {
	var tracking order.Tracking
	if err := c.do(ctx, http.MethodGet, "/orders/track/"+trackingNumber, "", nil, &tracking); err != nil {
		return nil, err
	}
	return &tracking, nil
}
