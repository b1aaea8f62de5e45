package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the point-in-time receipt of a checkout. Only FulfillmentStatus
// changes after creation.
type Order struct {
	ID                uint              `json:"id" gorm:"primaryKey"`
	CustomerID        uint              `json:"customer_id" gorm:"index;not null"`
	OrderDate         time.Time         `json:"order_date" gorm:"index;not null"`
	TotalAmount       decimal.Decimal   `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	ShippingAddress   Address           `json:"shipping_address" gorm:"serializer:json;type:text;not null"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status" gorm:"type:varchar(20);index;not null;default:'Pending'"`
	Items             []OrderItem       `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	Customer *CustomerContact `json:"customer,omitempty" gorm:"-"`
}

// OrderItem is a frozen snapshot of one purchased product
type OrderItem struct {
	ID          uint            `json:"-" gorm:"primaryKey"`
	OrderID     uint            `json:"-" gorm:"index;not null"`
	ProductID   uint            `json:"product_id" gorm:"index;not null"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	PriceAtSale decimal.Decimal `json:"price_at_sale" gorm:"type:numeric(12,2);not null"`
	MerchantID  uint            `json:"merchant_id" gorm:"index;not null"`
}

// LineTotal is price at sale times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder snapshots priced lines into a pending order and computes its total
func NewOrder(customerID uint, shipping Address, items []OrderItem, at time.Time) *Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return &Order{
		CustomerID:        customerID,
		OrderDate:         at,
		TotalAmount:       total,
		ShippingAddress:   shipping,
		FulfillmentStatus: StatusPending,
		Items:             items,
	}
}

// MerchantIDs lists the distinct merchants owning a line of the order
func (o *Order) MerchantIDs() []uint {
	ids := make([]uint, 0, len(o.Items))
	seen := make(map[uint]bool, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.MerchantID] {
			seen[it.MerchantID] = true
			ids = append(ids, it.MerchantID)
		}
	}
	return ids
}

// AllModels lists the entities to migrate
func AllModels() []interface{} {
	return []interface{}{&User{}, &Product{}, &CartItem{}, &WishlistItem{}, &Order{}, &OrderItem{}}
}
