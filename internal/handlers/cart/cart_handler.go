// internal/handlers/cart/cart_handler.go
package cart

import (
	"net/http"
	"strconv"

	domain "storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/pkg/response"
	cartService "storefront-gateway/internal/service/cart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts  *cartService.Service
	logger *zap.Logger
}

func NewCartHandler(carts *cartService.Service, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// Get returns the mirrored cart without touching the platform API.
func (h *CartHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, "cart state", h.carts.Current())
}

// Fetch re-pulls the cart from the platform API and replaces the mirror.
func (h *CartHandler) Fetch(c *gin.Context) {
	res := h.carts.Fetch(c.Request.Context())
	h.writeResult(c, res)
}

// Summary reports derived totals; the delivery fee is supplied by the
// caller since it is a checkout-time input, not cart state.
func (h *CartHandler) Summary(c *gin.Context) {
	fee, err := strconv.ParseFloat(c.DefaultQuery("deliveryFee", "0"), 64)
	if err != nil || fee < 0 {
		response.ValidationError(c, "invalid delivery fee", err)
		return
	}

	response.Success(c, http.StatusOK, "cart summary", gin.H{
		"itemCount":   h.carts.ItemCount(),
		"subtotal":    h.carts.Subtotal(),
		"deliveryFee": h.carts.DeliveryFee(fee),
		"total":       h.carts.Total(fee),
	})
}

// AddItem adds a product to the cart.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req domain.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.carts.AddItem(c.Request.Context(), &req)
	h.writeResult(c, res)
}

// UpdateItem changes a cart line's quantity. A successful mutation is
// followed by a full refetch so the mirror tracks any server-side
// recalculation the update response may have omitted.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID := c.Param("id")

	var req domain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.carts.UpdateItemQuantity(c.Request.Context(), itemID, req.Quantity)
	if res.Success {
		res = h.carts.Fetch(c.Request.Context())
	}
	h.writeResult(c, res)
}

// RemoveItem deletes a cart line, then refetches.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	res := h.carts.RemoveItem(c.Request.Context(), c.Param("id"))
	if res.Success {
		res = h.carts.Fetch(c.Request.Context())
	}
	h.writeResult(c, res)
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *gin.Context) {
	res := h.carts.Clear(c.Request.Context())
	h.writeResult(c, res)
}

// ========== Drawer ==========

func (h *CartHandler) Drawer(c *gin.Context) {
	response.Success(c, http.StatusOK, "drawer state", h.carts.Drawer())
}

func (h *CartHandler) OpenDrawer(c *gin.Context) {
	h.carts.OpenDrawer()
	response.Success(c, http.StatusOK, "drawer opened", h.carts.Drawer())
}

func (h *CartHandler) CloseDrawer(c *gin.Context) {
	h.carts.CloseDrawer()
	response.Success(c, http.StatusOK, "drawer closed", h.carts.Drawer())
}

func (h *CartHandler) ToggleDrawer(c *gin.Context) {
	h.carts.ToggleDrawer()
	response.Success(c, http.StatusOK, "drawer toggled", h.carts.Drawer())
}

func (h *CartHandler) SetDrawerBusy(c *gin.Context) {
	var req struct {
		Busy bool `json:"busy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	h.carts.SetDrawerBusy(req.Busy)
	response.Success(c, http.StatusOK, "drawer updated", h.carts.Drawer())
}

func (h *CartHandler) writeResult(c *gin.Context, res domain.Result) {
	if res.Success {
		response.Success(c, http.StatusOK, res.Message, res.Cart)
		return
	}
	response.Error(c, http.StatusBadRequest, res.Message, nil)
}
