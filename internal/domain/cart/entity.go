// internal/domain/cart/entity.go
package cart

// Item is a single cart line. The ID is assigned by the platform API and the
// unit price reflects the server-side price at the time the item was added.
type Item struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// Cart is the server-authoritative cart snapshot. The gateway mirrors it and
// never recomputes TotalAmount from the items; server rounding rules win.
type Cart struct {
	ID          string  `json:"id"`
	Items       []Item  `json:"items"`
	TotalAmount float64 `json:"totalAmount"`
}

// ItemCount sums the quantities across all lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Drawer is the presentational drawer state. It is never persisted.
type Drawer struct {
	IsOpen bool `json:"isOpen"`
	IsBusy bool `json:"isBusy"`
}
