package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultQuantityUnit is used when a merchant does not name a unit
const DefaultQuantityUnit = "grams"

// Product is a catalog item owned by exactly one merchant
type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	MerchantID    uint            `json:"merchant_id" gorm:"index;not null"`
	Name          string          `json:"name" gorm:"type:varchar(255);not null"`
	Description   string          `json:"description" gorm:"type:text;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	QuantityUnit  string          `json:"quantity_unit" gorm:"type:varchar(50);not null;default:'grams'"`
	Category      string          `json:"category" gorm:"type:varchar(100);index;not null"`
	ImageURL      string          `json:"image_url,omitempty" gorm:"type:text"`
	RatingAverage float64         `json:"rating_average" gorm:"not null;default:0"`
	ReviewCount   int             `json:"review_count" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
