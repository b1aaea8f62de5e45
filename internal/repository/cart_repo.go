package repository

import (
	"context"
	"time"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository persists cart and wishlist entries of a user
type CartRepository struct {
	db *gorm.DB
}

// AddOrIncrement adds quantity of product to the user's cart, incrementing
// an existing entry for the same product in a single statement.
func (r *CartRepository) AddOrIncrement(ctx context.Context, userID, productID uint, quantity int) error {
	defer prometheus.TrackDBOperation("upsert")(time.Now())
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProduct(tx, productID); err != nil {
			return err
		}

		item := model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + excluded.quantity")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			},
		}).Create(&item).Error
		if err != nil {
			return err
		}
		return bumpCartVersion(tx, userID)
	}))
}

// Items returns the cart with every product joined to its current row
func (r *CartRepository) Items(ctx context.Context, userID uint) ([]model.CartItem, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var items []model.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// Remove drops one product from the cart
func (r *CartRepository) Remove(ctx context.Context, userID, productID uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.ErrNotFound, "Product is not in the cart.")
		}
		return bumpCartVersion(tx, userID)
	}))
}

// Consume empties the cart if it is still at version. It reports false when
// another writer changed the cart since version was read.
func (r *CartRepository) Consume(ctx context.Context, userID uint, version int64) (bool, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	db := r.db.WithContext(ctx)

	res := db.Model(&model.User{}).
		Where("id = ? AND cart_version = ?", userID, version).
		UpdateColumn("cart_version", gorm.Expr("cart_version + 1"))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		return false, translate(err)
	}
	return true, nil
}

// AddToWishlist saves a product; saving it twice keeps one entry
func (r *CartRepository) AddToWishlist(ctx context.Context, userID, productID uint) error {
	defer prometheus.TrackDBOperation("upsert")(time.Now())
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProduct(tx, productID); err != nil {
			return err
		}
		item := model.WishlistItem{UserID: userID, ProductID: productID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error
	}))
}

// Wishlist returns saved products joined to their current rows
func (r *CartRepository) Wishlist(ctx context.Context, userID uint) ([]model.WishlistItem, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var items []model.WishlistItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// RemoveFromWishlist drops a saved product
func (r *CartRepository) RemoveFromWishlist(ctx context.Context, userID, productID uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	res := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.WishlistItem{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "Product is not in the wishlist.")
	}
	return nil
}

func requireProduct(tx *gorm.DB, productID uint) error {
	var count int64
	if err := tx.Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.New(apperr.ErrNotFound, "Product not found.")
	}
	return nil
}

func bumpCartVersion(tx *gorm.DB, userID uint) error {
	res := tx.Model(&model.User{}).Where("id = ?", userID).
		UpdateColumn("cart_version", gorm.Expr("cart_version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "User not found.")
	}
	return nil
}
