// internal/handlers/catalog/catalog_handler.go
package catalog

import (
	"net/http"

	"storefront-gateway/internal/pkg/response"
	catalogService "storefront-gateway/internal/service/catalog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// passthroughFilters are the query parameters forwarded to the
// platform product listing as-is.
var passthroughFilters = []string{"page", "limit", "category", "search", "sort", "minPrice", "maxPrice"}

type CatalogHandler struct {
	catalog *catalogService.Service
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *catalogService.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// List proxies the product listing with pagination and filters.
func (h *CatalogHandler) List(c *gin.Context) {
	filters := map[string]string{}
	for _, key := range passthroughFilters {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	res := h.catalog.List(c.Request.Context(), filters)
	if !res.Success {
		response.Error(c, http.StatusBadGateway, res.Message, nil)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res.Listing)
}

// Get returns a single product by id.
func (h *CatalogHandler) Get(c *gin.Context) {
	res := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if !res.Success {
		response.NotFound(c, res.Message)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res.Product)
}
