package repository

import (
	"context"
	"strings"
	"time"

	"spiceshop-service/internal/model"
	"spiceshop-service/prometheus"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sort orders accepted by catalog search
const (
	SortByName      = "name"
	SortByPriceLow  = "price-low"
	SortByPriceHigh = "price-high"
	SortByRating    = "rating"
)

// ProductQuery filters the public catalog
type ProductQuery struct {
	Search   string
	Category string
	Sort     string
}

// ProductUpdate carries the fields a merchant may change; nil means keep
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	QuantityUnit  *string
	Category      *string
	ImageURL      *string
}

func (u ProductUpdate) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.StockQuantity != nil {
		cols["stock_quantity"] = *u.StockQuantity
	}
	if u.QuantityUnit != nil {
		cols["quantity_unit"] = *u.QuantityUnit
	}
	if u.Category != nil {
		cols["category"] = *u.Category
	}
	if u.ImageURL != nil {
		cols["image_url"] = *u.ImageURL
	}
	return cols
}

// ProductRepository persists catalog items
type ProductRepository struct {
	db *gorm.DB
}

// Search lists the catalog with name substring, category and sort applied.
// Everything matching is returned in one page.
func (r *ProductRepository) Search(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	db := r.db.WithContext(ctx)

	if s := strings.TrimSpace(q.Search); s != "" {
		db = db.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if q.Category != "" && q.Category != "all" {
		db = db.Where("category = ?", q.Category)
	}

	switch q.Sort {
	case SortByPriceLow:
		db = db.Order("price ASC")
	case SortByPriceHigh:
		db = db.Order("price DESC")
	case SortByRating:
		db = db.Order("rating_average DESC")
	default:
		db = db.Order("name ASC")
	}

	var products []model.Product
	if err := db.Order("id ASC").Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

// FindByID loads one product
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Create inserts a product
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// ListByMerchant returns the merchant's own products, ordered by orderBy
func (r *ProductRepository) ListByMerchant(ctx context.Context, merchantID uint, orderBy string) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	if orderBy == "" {
		orderBy = "id ASC"
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order(orderBy).
		Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

// UpdateOwned changes a product only if merchantID owns it. A product that
// exists under another merchant is reported as not found.
func (r *ProductRepository) UpdateOwned(ctx context.Context, id, merchantID uint, upd ProductUpdate) (*model.Product, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	var p model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND merchant_id = ?", id, merchantID).First(&p).Error; err != nil {
			return err
		}
		cols := upd.columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&p).Where("merchant_id = ?", merchantID).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&p, p.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// DeleteOwned removes a merchant's product and every cart or wishlist
// entry pointing at it
func (r *ProductRepository) DeleteOwned(ctx context.Context, id, merchantID uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		if err := tx.Where("id = ? AND merchant_id = ?", id, merchantID).First(&p).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&model.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Where("merchant_id = ?", merchantID).Delete(&p).Error
	}))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
