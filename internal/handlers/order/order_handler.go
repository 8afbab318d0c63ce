// internal/handlers/order/order_handler.go
package order

import (
	"net/http"

	domain "storefront-gateway/internal/domain/order"
	"storefront-gateway/internal/pkg/response"
	orderService "storefront-gateway/internal/service/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders *orderService.Service
	logger *zap.Logger
}

func NewOrderHandler(orders *orderService.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// Create places an order from the current cart.
func (h *OrderHandler) Create(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.orders.Create(c.Request.Context(), &req)
	if !res.Success {
		response.Error(c, http.StatusBadRequest, res.Message, nil)
		return
	}
	response.Success(c, http.StatusCreated, res.Message, gin.H{
		"order":   res.Order,
		"payment": res.Payment,
	})
}

// List returns the user's orders.
func (h *OrderHandler) List(c *gin.Context) {
	filters := map[string]string{}
	for _, key := range []string{"page", "limit", "status"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	res := h.orders.List(c.Request.Context(), filters)
	if !res.Success {
		response.Error(c, http.StatusBadRequest, res.Message, nil)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res.Page)
}

// Get returns a single order.
func (h *OrderHandler) Get(c *gin.Context) {
	res := h.orders.Get(c.Request.Context(), c.Param("id"))
	if !res.Success {
		response.NotFound(c, res.Message)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res.Order)
}

// VerifyPayment confirms a payment reference after checkout redirect.
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	res := h.orders.VerifyPayment(c.Request.Context(), c.Param("reference"))
	if !res.Success {
		response.Error(c, http.StatusBadRequest, res.Message, nil)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res.Order)
}

// Track looks up shipment status by tracking number; no login required.
func (h *OrderHandler) Track(c *gin.Context) {
	res := h.orders.Track(c.Request.Context(), c.Param("trackingNumber"))
	if !res.Success {
		response.NotFound(c, res.Message)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res.Tracking)
}
