package service

import (
	"context"
	"errors"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/pkg/logger"

	"go.uber.org/zap"
)

// AdminService runs merchant onboarding
type AdminService struct {
	store *repository.Store
}

// NewAdminService creates the admin service
func NewAdminService(store *repository.Store) *AdminService {
	return &AdminService{store: store}
}

// Merchants lists merchant accounts. status "pending" narrows the list to
// merchants awaiting approval; anything else lists all of them.
func (s *AdminService) Merchants(ctx context.Context, status string) ([]model.User, error) {
	return s.store.Users.ListMerchants(ctx, status == "pending")
}

// Approve lets a merchant log in. Approving twice is harmless.
func (s *AdminService) Approve(ctx context.Context, merchantID uint) (*model.User, error) {
	u, err := s.store.Users.ApproveMerchant(ctx, merchantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.ErrNotFound, "Merchant not found.")
	}
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("Merchant approved", zap.Uint("merchant_id", u.ID))
	return u, nil
}

// Remove deletes a merchant together with its products
func (s *AdminService) Remove(ctx context.Context, merchantID uint) (*model.User, error) {
	u, err := s.store.Users.DeleteMerchant(ctx, merchantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.ErrNotFound, "Merchant not found.")
	}
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("Merchant removed", zap.Uint("merchant_id", u.ID))
	return u, nil
}
