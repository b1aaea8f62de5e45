package service

import (
	"context"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/prometheus"
)

// CartService manages a customer's cart and wishlist
type CartService struct {
	store *repository.Store
}

// NewCartService creates the cart service
func NewCartService(store *repository.Store) *CartService {
	return &CartService{store: store}
}

// Add puts quantity units of a product in the cart, incrementing an
// existing entry, and returns the updated cart
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) ([]model.CartItem, error) {
	if productID == 0 {
		return nil, apperr.New(apperr.ErrValidation, "product_id is required.")
	}
	if quantity <= 0 {
		return nil, apperr.New(apperr.ErrValidation, "Quantity must be a positive integer.")
	}
	if err := s.store.Carts.AddOrIncrement(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	prometheus.RecordCartOperation("add")
	return s.store.Carts.Items(ctx, userID)
}

// View returns the cart with current product details
func (s *CartService) View(ctx context.Context, userID uint) ([]model.CartItem, error) {
	return s.store.Carts.Items(ctx, userID)
}

// Remove drops a product from the cart and returns what is left
func (s *CartService) Remove(ctx context.Context, userID, productID uint) ([]model.CartItem, error) {
	if err := s.store.Carts.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	prometheus.RecordCartOperation("remove")
	return s.store.Carts.Items(ctx, userID)
}

// SaveForLater adds a product to the wishlist and returns the wishlist
func (s *CartService) SaveForLater(ctx context.Context, userID, productID uint) ([]model.WishlistItem, error) {
	if productID == 0 {
		return nil, apperr.New(apperr.ErrValidation, "product_id is required.")
	}
	if err := s.store.Carts.AddToWishlist(ctx, userID, productID); err != nil {
		return nil, err
	}
	prometheus.RecordCartOperation("wishlist_add")
	return s.store.Carts.Wishlist(ctx, userID)
}

// Wishlist returns saved products
func (s *CartService) Wishlist(ctx context.Context, userID uint) ([]model.WishlistItem, error) {
	return s.store.Carts.Wishlist(ctx, userID)
}

// Unsave removes a product from the wishlist
func (s *CartService) Unsave(ctx context.Context, userID, productID uint) ([]model.WishlistItem, error) {
	if err := s.store.Carts.RemoveFromWishlist(ctx, userID, productID); err != nil {
		return nil, err
	}
	prometheus.RecordCartOperation("wishlist_remove")
	return s.store.Carts.Wishlist(ctx, userID)
}
