package services

import (
	"context"
	"fmt"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/ports"
)

// CartService handles cart reads and mutations
type CartService struct {
	cartRepo ports.CartRepository
	catalog  *CatalogService
	logger   *logger.Logger
}

// NewCartService creates a new cart service
func NewCartService(cartRepo ports.CartRepository, catalog *CatalogService, logger *logger.Logger) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		catalog:  catalog,
		logger:   logger.WithComponent("cart_service"),
	}
}

// GetCart returns the user's cart, empty when none is stored
func (s *CartService) GetCart(ctx context.Context, username string) (entities.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return cart, nil
}

// UpdateItem sets one item's quantity; a quantity <= 0 removes the item
func (s *CartService) UpdateItem(ctx context.Context, req ports.UpdateCartItemRequest) (entities.Cart, error) {
	cart, err := s.cartRepo.SetItem(ctx, req.Username, req.Item, *req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	s.logger.LogUserAction(req.Username, "cart_update", map[string]interface{}{
		"item":     req.Item,
		"quantity": *req.Quantity,
		"cart":     cart,
	})
	return cart, nil
}

// ReplaceCart overwrites the user's whole cart
func (s *CartService) ReplaceCart(ctx context.Context, req ports.ReplaceCartRequest) (entities.Cart, error) {
	cart, err := s.cartRepo.Replace(ctx, req.Username, req.Cart)
	if err != nil {
		return nil, fmt.Errorf("failed to replace cart: %w", err)
	}

	s.logger.LogUserAction(req.Username, "cart_replace", map[string]interface{}{
		"cart": cart,
	})
	return cart, nil
}

// Purchase empties the user's cart and returns what it held, priced
// against the catalog
func (s *CartService) Purchase(ctx context.Context, req ports.PurchaseRequest) (*ports.PurchaseReceipt, error) {
	items, err := s.cartRepo.Clear(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	total, unknown := s.catalog.Total(items)
	s.logger.LogUserAction(req.Username, "purchase", map[string]interface{}{
		"items": items,
		"total": total,
	})

	return &ports.PurchaseReceipt{
		Items:   items,
		Total:   total,
		Unknown: unknown,
	}, nil
}
