// internal/domain/catalog/dto.go
package catalog

// Listing is the products page returned by the platform API.
type Listing struct {
	Products   []Product   `json:"products"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ListResult is the uniform product listing outcome.
type ListResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Listing *Listing `json:"listing,omitempty"`
}

// GetResult is the uniform single-product outcome.
type GetResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Product *Product `json:"product,omitempty"`
}
