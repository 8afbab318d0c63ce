// internal/domain/cart/dto.go
package cart

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// UpdateItemRequest changes the quantity of an existing cart line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// Result is the uniform cart operation outcome surfaced to the UI layer.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Cart    *Cart  `json:"cart,omitempty"`
}
