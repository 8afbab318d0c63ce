// internal/app/router.go
package app

import (
	cartHandler "storefront-gateway/internal/handlers/cart"
	catalogHandler "storefront-gateway/internal/handlers/catalog"
	orderHandler "storefront-gateway/internal/handlers/order"
	sessionHandler "storefront-gateway/internal/handlers/session"
	wsHandler "storefront-gateway/internal/handlers/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	SessionHandler *sessionHandler.SessionHandler
	CartHandler    *cartHandler.CartHandler
	CatalogHandler *catalogHandler.CatalogHandler
	OrderHandler   *orderHandler.OrderHandler
	WSHandler      *wsHandler.WSHandler
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.Serve)

	// ==================== Session ====================
	session := api.Group("/session")
	{
		session.GET("", h.SessionHandler.Current)
		session.POST("/register", h.SessionHandler.Register)
		session.POST("/login", h.SessionHandler.Login)
		session.POST("/logout", h.SessionHandler.Logout)
		session.POST("/refresh", h.SessionHandler.Refresh)
		session.POST("/verify-email", h.SessionHandler.VerifyEmail)
		session.POST("/resend-verification", h.SessionHandler.ResendVerification)
		session.POST("/password-reset", h.SessionHandler.RequestPasswordReset)
		session.POST("/password-reset/confirm", h.SessionHandler.ResetPassword)
		session.PATCH("/profile", h.SessionHandler.UpdateProfile)
		session.DELETE("/account", h.SessionHandler.DeleteAccount)
	}

	// ==================== Cart ====================
	cart := api.Group("/cart")
	{
		cart.GET("", h.CartHandler.Get)
		cart.POST("/refresh", h.CartHandler.Fetch)
		cart.GET("/summary", h.CartHandler.Summary)
		cart.POST("/items", h.CartHandler.AddItem)
		cart.PATCH("/items/:id", h.CartHandler.UpdateItem)
		cart.DELETE("/items/:id", h.CartHandler.RemoveItem)
		cart.DELETE("", h.CartHandler.Clear)

		drawer := cart.Group("/drawer")
		{
			drawer.GET("", h.CartHandler.Drawer)
			drawer.POST("/open", h.CartHandler.OpenDrawer)
			drawer.POST("/close", h.CartHandler.CloseDrawer)
			drawer.POST("/toggle", h.CartHandler.ToggleDrawer)
			drawer.POST("/busy", h.CartHandler.SetDrawerBusy)
		}
	}

	// ==================== Catalog ====================
	products := api.Group("/products")
	{
		products.GET("", h.CatalogHandler.List)
		products.GET("/:id", h.CatalogHandler.Get)
	}

	// ==================== Orders ====================
	orders := api.Group("/orders")
	{
		orders.POST("", h.OrderHandler.Create)
		orders.GET("", h.OrderHandler.List)
		orders.GET("/verify/:reference", h.OrderHandler.VerifyPayment)
		orders.GET("/track/:trackingNumber", h.OrderHandler.Track)
		orders.GET("/:id", h.OrderHandler.Get)
	}

	logger.Info("routes registered")
}
