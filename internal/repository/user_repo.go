package repository

import (
	"context"
	"errors"
	"time"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/prometheus"

	"gorm.io/gorm"
)

// UserRepository persists accounts
type UserRepository struct {
	db *gorm.DB
}

// ProfileUpdate carries the optional profile fields a customer may change
type ProfileUpdate struct {
	Name      *string
	Addresses *[]model.Address
}

// RoleActivity is a per-role account count
type RoleActivity struct {
	Role   model.Role `json:"role"`
	Count  int64      `json:"count"`
	Active int64      `json:"active"`
}

// Create inserts a new account
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.New(apperr.ErrUserExists, "User already exists")
	}
	return translate(err)
}

// ExistsByEmailOrUsername reports whether either identifier is taken
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email)
	if username != "" {
		q = q.Or("username = ?", username)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// FindByEmail loads an account by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindByID loads an account by id
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UpdateProfile applies the non-nil fields of upd
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Addresses != nil {
			u.Addresses = *upd.Addresses
		}
		return tx.Model(&u).Select("name", "addresses").Updates(&u).Error
	}))
}

// TouchLastLogin stamps a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return translate(r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error)
}

// CartVersion returns the optimistic concurrency counter of a user's cart
func (r *UserRepository) CartVersion(ctx context.Context, id uint) (int64, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Select("id", "cart_version").First(&u, id).Error; err != nil {
		return 0, translate(err)
	}
	return u.CartVersion, nil
}

// ListMerchants returns merchant accounts, optionally only those awaiting approval
func (r *UserRepository) ListMerchants(ctx context.Context, pendingOnly bool) ([]model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	q := r.db.WithContext(ctx).Where("role = ?", model.RoleMerchant)
	if pendingOnly {
		q = q.Where("is_approved = ?", false)
	}
	var merchants []model.User
	if err := q.Order("created_at ASC").Order("id ASC").Find(&merchants).Error; err != nil {
		return nil, translate(err)
	}
	return merchants, nil
}

// ApproveMerchant sets is_approved on a merchant account. Approving an
// already approved merchant is a no-op.
func (r *UserRepository) ApproveMerchant(ctx context.Context, id uint) (*model.User, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	var u model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND role = ?", id, model.RoleMerchant).First(&u).Error; err != nil {
			return err
		}
		if u.IsApproved {
			return nil
		}
		u.IsApproved = true
		return tx.Model(&u).Update("is_approved", true).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// DeleteMerchant removes a merchant account together with its catalog.
// Orders keep their line snapshots.
func (r *UserRepository) DeleteMerchant(ctx context.Context, id uint) (*model.User, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	var u model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND role = ?", id, model.RoleMerchant).First(&u).Error; err != nil {
			return err
		}

		owned := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.Product{}).Select("id").Where("merchant_id = ?", id)
		if err := tx.Where("product_id IN (?)", owned).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id IN (?)", owned).Delete(&model.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("merchant_id = ?", id).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Contacts returns customer contact data keyed by user id
func (r *UserRepository) Contacts(ctx context.Context, ids []uint) (map[uint]model.CustomerContact, error) {
	contacts := make(map[uint]model.CustomerContact, len(ids))
	if len(ids) == 0 {
		return contacts, nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if err := r.db.WithContext(ctx).
		Select("id", "name", "email", "addresses").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	for i := range users {
		contacts[users[i].ID] = users[i].Contact()
	}
	return contacts, nil
}

// RoleActivity counts accounts per role and how many logged in since activeSince
func (r *UserRepository) RoleActivity(ctx context.Context, activeSince time.Time) ([]RoleActivity, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []RoleActivity
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("role, COUNT(*) AS count, "+
			"COALESCE(SUM(CASE WHEN last_login_at > ? THEN 1 ELSE 0 END), 0) AS active", activeSince.UTC()).
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}

	byRole := make(map[model.Role]RoleActivity, len(rows))
	for _, row := range rows {
		byRole[row.Role] = row
	}
	stats := make([]RoleActivity, 0, len(rows))
	for _, role := range model.Roles {
		if ra, ok := byRole[role]; ok {
			stats = append(stats, ra)
		}
	}
	return stats, nil
}
