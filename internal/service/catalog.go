package service

import (
	"context"
	"errors"
	"strings"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput is a new catalog item submitted by a merchant
type ProductInput struct {
	Name          string           `json:"name" validate:"required"`
	Description   string           `json:"description" validate:"required"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	StockQuantity *int             `json:"stock_quantity" validate:"required,gte=0"`
	QuantityUnit  string           `json:"quantity_unit"`
	Category      string           `json:"category" validate:"required"`
	ImageURL      string           `json:"image_url" validate:"omitempty,url"`
}

// ProductPatch changes selected fields of a merchant's product
type ProductPatch struct {
	Name          *string          `json:"name" validate:"omitempty,min=1"`
	Description   *string          `json:"description" validate:"omitempty,min=1"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	QuantityUnit  *string          `json:"quantity_unit"`
	Category      *string          `json:"category" validate:"omitempty,min=1"`
	ImageURL      *string          `json:"image_url"`
}

// CatalogService serves the public catalog and merchants' own products
type CatalogService struct {
	store *repository.Store
}

// NewCatalogService creates the catalog service
func NewCatalogService(store *repository.Store) *CatalogService {
	return &CatalogService{store: store}
}

// Search lists products matching the query
func (s *CatalogService) Search(ctx context.Context, q repository.ProductQuery) ([]model.Product, error) {
	return s.store.Products.Search(ctx, q)
}

// Product returns one product by id
func (s *CatalogService) Product(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.store.Products.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.ErrNotFound, "Product not found.")
	}
	return p, err
}

// CreateProduct adds a product owned by merchantID
func (s *CatalogService) CreateProduct(ctx context.Context, merchantID uint, in ProductInput) (*model.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, apperr.New(apperr.ErrValidation, "price must be at least 0.")
	}

	unit := strings.TrimSpace(in.QuantityUnit)
	if unit == "" {
		unit = model.DefaultQuantityUnit
	}
	p := &model.Product{
		MerchantID:    merchantID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price.Round(2),
		StockQuantity: *in.StockQuantity,
		QuantityUnit:  unit,
		Category:      strings.TrimSpace(in.Category),
		ImageURL:      in.ImageURL,
	}
	if err := s.store.Products.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("Product created",
		zap.Uint("product_id", p.ID),
		zap.Uint("merchant_id", merchantID))
	return p, nil
}

// MerchantProducts lists the merchant's own products
func (s *CatalogService) MerchantProducts(ctx context.Context, merchantID uint) ([]model.Product, error) {
	return s.store.Products.ListByMerchant(ctx, merchantID, "")
}

// UpdateProduct applies patch to a product the merchant owns. Products of
// other merchants are reported as not found.
func (s *CatalogService) UpdateProduct(ctx context.Context, merchantID, productID uint, patch ProductPatch) (*model.Product, error) {
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, apperr.New(apperr.ErrValidation, "price must be at least 0.")
	}

	upd := repository.ProductUpdate{
		Name:          patch.Name,
		Description:   patch.Description,
		StockQuantity: patch.StockQuantity,
		QuantityUnit:  patch.QuantityUnit,
		Category:      patch.Category,
		ImageURL:      patch.ImageURL,
	}
	if patch.Price != nil {
		price := patch.Price.Round(2)
		upd.Price = &price
	}

	p, err := s.store.Products.UpdateOwned(ctx, productID, merchantID, upd)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.ErrNotFound, "Product not found or access denied.")
	}
	return p, err
}

// DeleteProduct removes a product the merchant owns and drops it from
// every cart and wishlist
func (s *CatalogService) DeleteProduct(ctx context.Context, merchantID, productID uint) error {
	err := s.store.Products.DeleteOwned(ctx, productID, merchantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.New(apperr.ErrNotFound, "Product not found or access denied.")
	}
	if err == nil {
		logger.FromCtx(ctx).Info("Product deleted",
			zap.Uint("product_id", productID),
			zap.Uint("merchant_id", merchantID))
	}
	return err
}
