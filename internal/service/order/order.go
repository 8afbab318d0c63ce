// Package order relays order placement, history and payment verification to
// the platform API. Orders are never cached beyond the last listing.
package order

import (
	"context"
	"sync"

	domain "storefront-gateway/internal/domain/order"
	"storefront-gateway/internal/platform"

	"go.uber.org/zap"
)

// TokenSource is the slice of the session service orders depend on.
type TokenSource interface {
	Token() (string, bool)
}

// CartSyncer re-fetches the cart after a verified payment empties it server-side.
type CartSyncer interface {
	Refresh(ctx context.Context)
}

type Service struct {
	api    *platform.Client
	sess   TokenSource
	cart   CartSyncer
	logger *zap.Logger

	mu      sync.Mutex
	page    *domain.Page
	loading bool
}

func NewService(api *platform.Client, sess TokenSource, cart CartSyncer, logger *zap.Logger) *Service {
	return &Service{api: api, sess: sess, cart: cart, logger: logger}
}

// Create places an order from the current cart.
func (s *Service) Create(ctx context.Context, req *domain.CreateRequest) domain.CreateResult {
	token, ok := s.sess.Token()
	if !ok {
		return domain.CreateResult{Success: false, Message: "Please log in to place an order"}
	}

	data, err := s.api.CreateOrder(ctx, token, req)
	if err != nil {
		s.logger.Warn("order creation failed", zap.Error(err))
		return domain.CreateResult{Success: false, Message: platform.Message(err, "Failed to create order")}
	}

	return domain.CreateResult{
		Success: true,
		Message: "Order created successfully",
		Order:   data.Order,
		Payment: data.Payment,
	}
}

// VerifyPayment confirms a payment reference after checkout. A confirmed
// payment empties the cart server-side, so both the orders listing and the
// cart mirror are re-fetched.
func (s *Service) VerifyPayment(ctx context.Context, reference string) domain.GetResult {
	token, ok := s.sess.Token()
	if !ok {
		return domain.GetResult{Success: false, Message: "Please log in to verify a payment"}
	}

	verified, err := s.api.VerifyPayment(ctx, token, reference)
	if err != nil {
		return domain.GetResult{Success: false, Message: platform.Message(err, "Payment verification failed")}
	}

	s.List(ctx, nil)
	if s.cart != nil {
		s.cart.Refresh(ctx)
	}
	return domain.GetResult{Success: true, Order: verified}
}

// List fetches the user's order history.
func (s *Service) List(ctx context.Context, filters map[string]string) domain.ListResult {
	token, ok := s.sess.Token()
	if !ok {
		return domain.ListResult{Success: false, Message: "Please log in to view your orders"}
	}

	s.setLoading(true)
	defer s.setLoading(false)

	page, err := s.api.ListOrders(ctx, token, filters)
	if err != nil {
		return domain.ListResult{Success: false, Message: platform.Message(err, "Failed to fetch orders")}
	}

	s.mu.Lock()
	s.page = page
	s.mu.Unlock()

	return domain.ListResult{Success: true, Page: page}
}

func (s *Service) Get(ctx context.Context, orderID string) domain.GetResult {
	token, ok := s.sess.Token()
	if !ok {
		return domain.GetResult{Success: false, Message: "Please log in to view your orders"}
	}

	fetched, err := s.api.GetOrder(ctx, token, orderID)
	if err != nil {
		return domain.GetResult{Success: false, Message: platform.Message(err, "Failed to fetch order")}
	}
	return domain.GetResult{Success: true, Order: fetched}
}

// Track is public: anyone holding a tracking number may query it.
func (s *Service) Track(ctx context.Context, trackingNumber string) domain.TrackResult {
	tracking, err := s.api.TrackOrder(ctx, trackingNumber)
	if err != nil {
		return domain.TrackResult{Success: false, Message: platform.Message(err, "Failed to track order")}
	}
	return domain.TrackResult{Success: true, Tracking: tracking}
}

// LastPage returns the most recent orders page fetched, nil if none.
func (s *Service) LastPage() *domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Service) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}
