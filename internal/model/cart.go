package model

import "time"

// CartItem is one pending selection in a customer's cart.
// (user_id, product_id) is unique: re-adding a product increments quantity.
type CartItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex:idx_cart_user_product;not null"`
	ProductID uint      `json:"product_id" gorm:"uniqueIndex:idx_cart_user_product;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"-"`
}

// WishlistItem is a product the customer saved for later
type WishlistItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex:idx_wishlist_user_product;not null"`
	ProductID uint      `json:"product_id" gorm:"uniqueIndex:idx_wishlist_user_product;not null"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"added_at"`
}
