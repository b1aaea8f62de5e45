package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"spiceshop-service/internal/access"
	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/events"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/pkg/lock"
	"spiceshop-service/pkg/logger"
	"spiceshop-service/prometheus"

	"go.uber.org/zap"
)

// OrderService places orders from carts and manages their fulfillment
type OrderService struct {
	store     *repository.Store
	locker    lock.Locker
	publisher events.Publisher
	lockTTL   time.Duration
	now       func() time.Time
}

// NewOrderService creates the order service
func NewOrderService(store *repository.Store, locker lock.Locker, publisher events.Publisher, lockTTL time.Duration) *OrderService {
	return &OrderService{
		store:     store,
		locker:    locker,
		publisher: publisher,
		lockTTL:   lockTTL,
		now:       time.Now,
	}
}

// PlaceOrder turns the customer's cart into a Pending order priced at the
// current catalog prices and empties the cart. Either both happen or
// neither does.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uint, shipping model.Address) (*model.Order, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("customer_id", customerID))

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, checkoutLockKey(customerID), s.lockTTL)
	if err != nil {
		prometheus.RecordCheckout("lock_timeout")
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, apperr.New(apperr.ErrCheckoutConflict, "Another checkout is in progress for this cart.")
		}
		return nil, apperr.Newf(apperr.ErrUnavailable, "checkout lock: %v", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to release checkout lock", zap.Error(err))
		}
	}()

	var order *model.Order
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		version, err := tx.Users.CartVersion(ctx, customerID)
		if err != nil {
			return err
		}
		cart, err := tx.Carts.Items(ctx, customerID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return apperr.New(apperr.ErrEmptyCart, "Cart is empty.")
		}

		lines := make([]model.OrderItem, 0, len(cart))
		for _, item := range cart {
			if item.Product == nil {
				return apperr.Newf(apperr.ErrProductUnavailable, "Product %d is no longer available.", item.ProductID)
			}
			lines = append(lines, model.OrderItem{
				ProductID:   item.ProductID,
				Name:        item.Product.Name,
				Quantity:    item.Quantity,
				PriceAtSale: item.Product.Price,
				MerchantID:  item.Product.MerchantID,
			})
		}

		order = model.NewOrder(customerID, shipping, lines, s.now().UTC())
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		consumed, err := tx.Carts.Consume(ctx, customerID, version)
		if err != nil {
			return err
		}
		if !consumed {
			return apperr.New(apperr.ErrCheckoutConflict, "Cart changed during checkout, please retry.")
		}
		return nil
	})
	if err != nil {
		prometheus.RecordCheckout(checkoutOutcome(err))
		return nil, err
	}

	prometheus.RecordCheckout("success")
	log.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Items)))

	if err := s.publisher.OrderCreated(ctx, order); err != nil {
		log.Warn("Failed to publish order created event", zap.Uint("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

// CustomerOrders returns the customer's order history, newest first
func (s *OrderService) CustomerOrders(ctx context.Context, customerID uint) ([]model.Order, error) {
	return s.store.Orders.ListByCustomer(ctx, customerID)
}

// MerchantOrders returns orders containing at least one of the merchant's
// lines, with customer contact details attached
func (s *OrderService) MerchantOrders(ctx context.Context, merchantID uint) ([]model.Order, error) {
	orders, err := s.store.Orders.ListByMerchant(ctx, merchantID, nil, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.CustomerID)
	}
	contacts, err := s.store.Users.Contacts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if c, ok := contacts[orders[i].CustomerID]; ok {
			c := c
			orders[i].Customer = &c
		}
	}
	return orders, nil
}

// UpdateStatus sets the fulfillment status of an order in which the
// calling merchant owns at least one line
func (s *OrderService) UpdateStatus(ctx context.Context, caller access.Identity, orderID uint, raw string) (*model.Order, error) {
	status, err := model.ParseFulfillmentStatus(raw)
	if err != nil {
		return nil, apperr.New(apperr.ErrValidation, "Invalid status. Must be one of Pending, Processing, Shipped, Delivered, Cancelled.")
	}

	order, err := s.store.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Order not found.")
		}
		return nil, err
	}
	if err := access.Authorize(caller, order.MerchantIDs(), model.RoleMerchant); err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			return nil, apperr.New(apperr.ErrForbidden, "Access denied to this order.")
		}
		return nil, err
	}
	merchantID := caller.UserID

	updated, err := s.store.Orders.UpdateStatusForMerchant(ctx, orderID, merchantID, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		// the order disappeared between the read and the scoped write
		return nil, apperr.New(apperr.ErrNotFound, "Order not found.")
	}

	previous := order.FulfillmentStatus
	order.FulfillmentStatus = status
	prometheus.RecordOrderStatus(string(status))

	log := logger.FromCtx(ctx)
	log.Info("Order status updated",
		zap.Uint("order_id", orderID),
		zap.Uint("merchant_id", merchantID),
		zap.String("status", string(status)))

	change := events.StatusChange{Order: order, MerchantID: merchantID, PreviousStatus: previous, NewStatus: status}
	if err := s.publisher.StatusChanged(ctx, change); err != nil {
		log.Warn("Failed to publish status change event", zap.Uint("order_id", orderID), zap.Error(err))
	}
	return order, nil
}

func checkoutLockKey(customerID uint) string {
	return "checkout:" + strconv.FormatUint(uint64(customerID), 10)
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, apperr.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, apperr.ErrCheckoutConflict):
		return "conflict"
	case errors.Is(err, apperr.ErrProductUnavailable):
		return "product_unavailable"
	default:
		return "error"
	}
}
