package service

import (
	"context"
	"errors"
	"strings"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
)

// ProfileInput changes a customer's name and/or replaces their addresses
type ProfileInput struct {
	Name      *string          `json:"name" validate:"omitempty,min=1"`
	Addresses *[]model.Address `json:"addresses"`
}

// ProfileService reads and edits the caller's own account
type ProfileService struct {
	store *repository.Store
}

// NewProfileService creates the profile service
func NewProfileService(store *repository.Store) *ProfileService {
	return &ProfileService{store: store}
}

// Get returns the caller's account without credentials, cart or wishlist
func (s *ProfileService) Get(ctx context.Context, userID uint) (*model.User, error) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.ErrNotFound, "User not found.")
	}
	return u, err
}

// Update applies in to the caller's account and returns the result
func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileInput) (*model.User, error) {
	if in.Name == nil && in.Addresses == nil {
		return nil, apperr.New(apperr.ErrValidation, "Nothing to update.")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	upd := repository.ProfileUpdate{Addresses: in.Addresses}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		upd.Name = &name
	}
	if err := s.store.Users.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "User not found.")
		}
		return nil, err
	}
	return s.store.Users.FindByID(ctx, userID)
}
