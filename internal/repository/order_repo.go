package repository

import (
	"context"
	"time"

	"spiceshop-service/internal/model"
	"spiceshop-service/prometheus"

	"gorm.io/gorm"
)

// OrderRepository persists orders and their line snapshots
type OrderRepository struct {
	db *gorm.DB
}

// Create inserts the order together with its lines
func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

// FindByID loads an order with its lines
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var o model.Order
	if err := r.db.WithContext(ctx).Preload("Items", orderItems).First(&o, id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// ListByCustomer returns a customer's orders, newest first
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]model.Order, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var orders []model.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("customer_id = ?", customerID).
		Order("order_date DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

// ListByMerchant returns orders holding at least one line owned by
// merchantID, newest first, optionally limited to an order date range
func (r *OrderRepository) ListByMerchant(ctx context.Context, merchantID uint, from, to *time.Time) ([]model.Order, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	db := r.db.WithContext(ctx)
	q := db.Preload("Items", orderItems).
		Where("id IN (?)", merchantOrderIDs(db, merchantID))
	q = betweenDates(q, from, to)

	var orders []model.Order
	if err := q.Order("order_date DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

// UpdateStatusForMerchant overwrites the status of an order in which
// merchantID owns a line. It reports false when no such order matched.
func (r *OrderRepository) UpdateStatusForMerchant(ctx context.Context, id, merchantID uint, status model.FulfillmentStatus) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	db := r.db.WithContext(ctx)
	res := db.Model(&model.Order{}).
		Where("id = ? AND id IN (?)", id, merchantOrderIDs(db, merchantID)).
		Update("fulfillment_status", status)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListBetween returns orders placed in [from, to], oldest first
func (r *OrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var orders []model.Order
	q := betweenDates(r.db.WithContext(ctx), &from, &to)
	if err := q.Order("order_date ASC").Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

func merchantOrderIDs(db *gorm.DB, merchantID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.OrderItem{}).
		Select("order_id").
		Where("merchant_id = ?", merchantID)
}

func betweenDates(q *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where("order_date >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("order_date <= ?", to.UTC())
	}
	return q
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
