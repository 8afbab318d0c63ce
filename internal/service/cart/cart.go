// Package cart mirrors the server-authoritative cart. Every mutation sends
// the request upstream and replaces the local cart wholesale with the
// server's echo; nothing is merged or recomputed locally.
package cart

import (
	"context"
	"sync"

	domain "storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/platform"
	"storefront-gateway/internal/push"

	"go.uber.org/zap"
)

// TokenSource is the slice of the session service the cart depends on.
type TokenSource interface {
	Token() (string, bool)
	Verified() bool
}

// Publisher pushes state-change events to connected UIs.
type Publisher interface {
	Publish(eventType string, data any)
}

type Service struct {
	api    *platform.Client
	sess   TokenSource
	pub    Publisher
	logger *zap.Logger

	mu       sync.Mutex
	cart     *domain.Cart
	loading  bool
	inflight map[string]struct{}
	drawer   domain.Drawer
}

func NewService(api *platform.Client, sess TokenSource, pub Publisher, logger *zap.Logger) *Service {
	return &Service{
		api:      api,
		sess:     sess,
		pub:      pub,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// ========== Fetch ==========

// Fetch reloads the cart from the platform. It is a silent no-op unless the
// session is authenticated with a verified email.
func (s *Service) Fetch(ctx context.Context) domain.Result {
	token, ok := s.sess.Token()
	if !ok || !s.sess.Verified() {
		return domain.Result{Success: true}
	}

	s.setLoading(true)
	defer s.setLoading(false)

	fetched, err := s.api.GetCart(ctx, token)
	if err != nil {
		s.logger.Warn("cart fetch failed", zap.Error(err))
		return domain.Result{Success: false, Message: platform.Message(err, "Failed to fetch cart")}
	}

	s.replace(fetched)
	return domain.Result{Success: true, Cart: fetched}
}

// Refresh is the session service's view of Fetch: fire and forget.
func (s *Service) Refresh(ctx context.Context) {
	s.Fetch(ctx)
}

// ========== Mutations ==========

// AddItem adds a product to the cart. Quantities below 1 are rejected before
// any network call is made.
func (s *Service) AddItem(ctx context.Context, req *domain.AddItemRequest) domain.Result {
	if req.Quantity < 1 {
		return domain.Result{Success: false, Message: "Quantity must be at least 1"}
	}
	token, ok := s.sess.Token()
	if !ok {
		return domain.Result{Success: false, Message: "Please log in to add items to your cart"}
	}

	updated, err := s.api.AddCartItem(ctx, token, req)
	if err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Failed to add to cart")}
	}

	s.replace(updated)
	return domain.Result{Success: true, Message: "Added to cart", Cart: updated}
}

// UpdateItemQuantity changes a cart line's quantity. Quantities below 1 are
// rejected client-side, and overlapping mutations of the same item are
// refused while one is in flight.
func (s *Service) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) domain.Result {
	if quantity < 1 {
		return domain.Result{Success: false, Message: "Quantity must be at least 1"}
	}
	token, ok := s.sess.Token()
	if !ok {
		return domain.Result{Success: false, Message: "Please log in to update your cart"}
	}
	if !s.tryAcquire(itemID) {
		return domain.Result{Success: false, Message: "This item is already being updated"}
	}
	defer s.release(itemID)

	updated, err := s.api.UpdateCartItem(ctx, token, itemID, quantity)
	if err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Failed to update cart")}
	}

	s.replace(updated)
	return domain.Result{Success: true, Message: "Cart updated", Cart: updated}
}

// RemoveItem deletes a cart line.
func (s *Service) RemoveItem(ctx context.Context, itemID string) domain.Result {
	token, ok := s.sess.Token()
	if !ok {
		return domain.Result{Success: false, Message: "Please log in to update your cart"}
	}
	if !s.tryAcquire(itemID) {
		return domain.Result{Success: false, Message: "This item is already being updated"}
	}
	defer s.release(itemID)

	updated, err := s.api.RemoveCartItem(ctx, token, itemID)
	if err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Failed to remove item")}
	}

	s.replace(updated)
	return domain.Result{Success: true, Message: "Item removed", Cart: updated}
}

// Clear empties the whole cart on the server.
func (s *Service) Clear(ctx context.Context) domain.Result {
	token, ok := s.sess.Token()
	if !ok {
		return domain.Result{Success: false, Message: "Please log in to update your cart"}
	}

	updated, err := s.api.ClearCart(ctx, token)
	if err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Failed to clear cart")}
	}

	s.replace(updated)
	return domain.Result{Success: true, Message: "Cart cleared", Cart: updated}
}

// Drop resets the local mirror without touching the server; the session
// service calls it when the session clears.
func (s *Service) Drop() {
	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()
	s.publish(push.EventCartUpdated, nil)
}

// ========== Derived getters ==========

// Current returns the mirrored cart, nil when none is loaded.
func (s *Service) Current() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ItemCount sums quantities across all cart lines.
func (s *Service) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Subtotal is the server-supplied total, never recomputed from items: it must
// stay consistent with server rounding rules.
func (s *Service) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.TotalAmount
}

// DeliveryFee is waived on an empty cart.
func (s *Service) DeliveryFee(fee float64) float64 {
	if s.Subtotal() > 0 {
		return fee
	}
	return 0
}

// Total is subtotal plus the delivery fee, which is waived on an empty cart.
func (s *Service) Total(deliveryFee float64) float64 {
	subtotal := s.Subtotal()
	if subtotal <= 0 {
		return 0
	}
	return subtotal + deliveryFee
}

// ========== Drawer ==========

func (s *Service) OpenDrawer()   { s.setDrawer(func(d *domain.Drawer) { d.IsOpen = true }) }
func (s *Service) CloseDrawer()  { s.setDrawer(func(d *domain.Drawer) { d.IsOpen = false }) }
func (s *Service) ToggleDrawer() { s.setDrawer(func(d *domain.Drawer) { d.IsOpen = !d.IsOpen }) }

func (s *Service) SetDrawerBusy(busy bool) {
	s.setDrawer(func(d *domain.Drawer) { d.IsBusy = busy })
}

func (s *Service) Drawer() domain.Drawer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawer
}

func (s *Service) setDrawer(mutate func(*domain.Drawer)) {
	s.mu.Lock()
	mutate(&s.drawer)
	drawer := s.drawer
	s.mu.Unlock()
	s.publish(push.EventCartDrawer, drawer)
}

// ========== Helpers ==========

func (s *Service) replace(fetched *domain.Cart) {
	s.mu.Lock()
	s.cart = fetched
	s.mu.Unlock()
	s.publish(push.EventCartUpdated, fetched)
}

func (s *Service) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Service) tryAcquire(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[itemID]; busy {
		return false
	}
	s.inflight[itemID] = struct{}{}
	return true
}

func (s *Service) release(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, itemID)
}

func (s *Service) publish(eventType string, data any) {
	if s.pub != nil {
		s.pub.Publish(eventType, data)
	}
}
