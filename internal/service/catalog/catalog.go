// Package catalog relays product browsing to the platform API. The gateway
// keeps only the last listing shown to the UI; it never stores or searches
// products itself.
package catalog

import (
	"context"
	"sync"

	domain "storefront-gateway/internal/domain/catalog"
	"storefront-gateway/internal/platform"

	"go.uber.org/zap"
)

type Service struct {
	api    *platform.Client
	logger *zap.Logger

	mu      sync.Mutex
	listing *domain.Listing
	loading bool
}

func NewService(api *platform.Client, logger *zap.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// List fetches a products page. Filters pass through to the platform
// untouched (category, search, page, limit).
func (s *Service) List(ctx context.Context, filters map[string]string) domain.ListResult {
	s.setLoading(true)
	defer s.setLoading(false)

	listing, err := s.api.ListProducts(ctx, filters)
	if err != nil {
		s.logger.Warn("product listing failed", zap.Error(err))
		return domain.ListResult{Success: false, Message: platform.Message(err, "Failed to fetch products")}
	}

	s.mu.Lock()
	s.listing = listing
	s.mu.Unlock()

	return domain.ListResult{Success: true, Listing: listing}
}

func (s *Service) Get(ctx context.Context, productID string) domain.GetResult {
	product, err := s.api.GetProduct(ctx, productID)
	if err != nil {
		return domain.GetResult{Success: false, Message: platform.Message(err, "Failed to fetch product")}
	}
	return domain.GetResult{Success: true, Product: product}
}

// LastListing returns the most recent page fetched for the UI, nil if none.
func (s *Service) LastListing() *domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listing
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
