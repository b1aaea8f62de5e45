package service

import (
	"context"
	"testing"
	"time"

	"spiceshop-service/internal/access"
	"spiceshop-service/internal/events/eventstest"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/internal/testutil"
	"spiceshop-service/pkg/jwtutil"
	"spiceshop-service/pkg/lock"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	store     *repository.Store
	jwt       *jwtutil.JWTUtil
	publisher *eventstest.Recorder

	auth      *AuthService
	carts     *CartService
	orders    *OrderService
	catalog   *CatalogService
	profiles  *ProfileService
	admin     *AdminService
	analytics *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-secret", ExpirationHours: 24})
	pub := &eventstest.Recorder{}

	auth := NewAuthService(store, jwt)
	auth.bcryptCost = bcrypt.MinCost

	return &testEnv{
		db:        db,
		store:     store,
		jwt:       jwt,
		publisher: pub,
		auth:      auth,
		carts:     NewCartService(store),
		orders:    NewOrderService(store, lock.NewLocalLocker(), pub, 5*time.Second),
		catalog:   NewCatalogService(store),
		profiles:  NewProfileService(store),
		admin:     NewAdminService(store),
		analytics: NewAnalyticsService(store),
	}
}

func ctx() context.Context {
	return context.Background()
}

func identityOf(u *model.User) access.Identity {
	return access.Identity{UserID: u.ID, Role: u.Role, Email: u.Email, Name: u.Name}
}
