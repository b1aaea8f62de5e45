package service

import (
	"testing"
	"time"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeAt(t *testing.T, env *testEnv, customerID uint, at time.Time, items ...model.OrderItem) {
	t.Helper()
	require.NoError(t, env.store.Orders.Create(ctx(), model.NewOrder(customerID, kochi, items, at.UTC())))
}

func line(merchantID uint, price int64, qty int) model.OrderItem {
	return model.OrderItem{ProductID: 1, Name: "x", Quantity: qty, PriceAtSale: decimal.NewFromInt(price), MerchantID: merchantID}
}

func TestSalesByDay(t *testing.T) {
	env := newTestEnv(t)
	c := testutil.CreateUser(t, env.db, "c@example.com", model.RoleCustomer, true)

	placeAt(t, env, c.ID, day("2026-03-01T09:00:00Z"), line(1, 10, 1))
	placeAt(t, env, c.ID, day("2026-03-01T18:00:00Z"), line(1, 5, 2), line(2, 7, 1))
	placeAt(t, env, c.ID, day("2026-03-02T12:00:00Z"), line(2, 3, 1))
	placeAt(t, env, c.ID, day("2026-04-20T12:00:00Z"), line(1, 100, 1))

	from, to, err := env.analytics.Range("2026-03-01", "2026-03-02")
	require.NoError(t, err)

	sales, err := env.analytics.Sales(ctx(), from, to)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "2026-03-01", sales[0].Date)
	assert.True(t, decimal.NewFromInt(27).Equal(sales[0].TotalSales), sales[0].TotalSales.String())
	assert.Equal(t, 2, sales[0].OrdersCount)
	assert.Equal(t, "2026-03-02", sales[1].Date)
	assert.Equal(t, 1, sales[1].OrdersCount)

	mine, err := env.analytics.MerchantSales(ctx(), 1, from, to)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(mine[0].TotalSales), mine[0].TotalSales.String())
	assert.Equal(t, 2, mine[0].OrdersCount)
}

func TestAnalyticsRange(t *testing.T) {
	env := newTestEnv(t)
	now := day("2026-05-31T10:00:00Z")
	env.analytics.now = func() time.Time { return now }

	from, to, err := env.analytics.Range("", "")
	require.NoError(t, err)
	assert.Equal(t, now, to)
	assert.Equal(t, now.Add(-30*24*time.Hour), from)

	_, _, err = env.analytics.Range("yesterday", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, _, err = env.analytics.Range("2026-05-02", "2026-05-01")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUserActivityAndProductStats(t *testing.T) {
	env := newTestEnv(t)
	m := testutil.CreateUser(t, env.db, "m@example.com", model.RoleMerchant, true)
	testutil.CreateUser(t, env.db, "c@example.com", model.RoleCustomer, true)
	require.NoError(t, env.store.Users.TouchLastLogin(ctx(), m.ID, time.Now().UTC()))

	stats, err := env.analytics.Users(ctx())
	require.NoError(t, err)
	assert.Equal(t, []repository.RoleActivity{
		{Role: model.RoleCustomer, Count: 1, Active: 0},
		{Role: model.RoleMerchant, Count: 1, Active: 1},
	}, stats)

	a := testutil.CreateProduct(t, env.db, m.ID, "A", "x", 1)
	b := testutil.CreateProduct(t, env.db, m.ID, "B", "x", 1)
	require.NoError(t, env.db.Model(b).Update("review_count", 12).Error)

	products, err := env.analytics.MerchantProducts(ctx(), m.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, b.ID, products[0].ID)
	assert.Equal(t, 12, products[0].ReviewCount)
	assert.Equal(t, a.ID, products[1].ID)
}
