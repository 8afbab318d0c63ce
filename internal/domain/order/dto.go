// internal/domain/order/dto.go
package order

// CreateRequest places an order from the current cart.
type CreateRequest struct {
	ShippingAddress string  `json:"shippingAddress" binding:"required"`
	City            string  `json:"city" binding:"required"`
	PhoneNumber     string  `json:"phoneNumber" binding:"required"`
	DeliveryFee     float64 `json:"deliveryFee"`
	PaymentMethod   string  `json:"paymentMethod,omitempty"`
}

// Page is an orders listing with the server's paging metadata.
type Page struct {
	Orders     []Order     `json:"orders"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination echoes the server's paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// CreateResult carries the created order plus whatever payment handoff data
// the platform returns (checkout URL, reference).
type CreateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
	Payment any    `json:"payment,omitempty"`
}

// ListResult is the uniform orders listing outcome.
type ListResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Page    *Page  `json:"page,omitempty"`
}

// GetResult is the uniform single-order outcome.
type GetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}

// TrackResult is the uniform tracking outcome.
type TrackResult struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Tracking *Tracking `json:"tracking,omitempty"`
}
