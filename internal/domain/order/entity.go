// internal/domain/order/entity.go
package order

import "time"

// Item is a purchased line on an order.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// Order is the platform API's representation of a placed order. Orders are
// never cached by the gateway beyond the last listing shown to the UI.
type Order struct {
	ID               string    `json:"id"`
	Items            []Item    `json:"items"`
	TotalAmount      float64   `json:"totalAmount"`
	DeliveryFee      float64   `json:"deliveryFee"`
	Status           string    `json:"status"`
	PaymentReference string    `json:"paymentReference,omitempty"`
	TrackingNumber   string    `json:"trackingNumber,omitempty"`
	ShippingAddress  string    `json:"shippingAddress,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Tracking is the public order tracking payload.
type Tracking struct {
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"`
	Note           string    `json:"note,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
