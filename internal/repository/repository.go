package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/prometheus"

	"gorm.io/gorm"
)

// Store groups the repositories over one connection or transaction
type Store struct {
	db       *gorm.DB
	Users    *UserRepository
	Products *ProductRepository
	Carts    *CartRepository
	Orders   *OrderRepository
}

// NewStore binds all repositories to db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    &UserRepository{db: db},
		Products: &ProductRepository{db: db},
		Carts:    &CartRepository{db: db},
		Orders:   &OrderRepository{db: db},
	}
}

// Transaction runs fn with a Store bound to one database transaction.
// Any error returned by fn rolls the whole unit back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	return translate(err)
}

// translate maps driver level failures onto the apperr taxonomy
func translate(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}

	for _, kind := range []error{
		apperr.ErrValidation, apperr.ErrNotFound, apperr.ErrForbidden,
		apperr.ErrEmptyCart, apperr.ErrCheckoutConflict, apperr.ErrProductUnavailable,
		apperr.ErrUserExists, apperr.ErrUnavailable,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	return fmt.Errorf("database error: %w", err)
}
