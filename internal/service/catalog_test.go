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

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func day(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func validProduct() ProductInput {
	return ProductInput{
		Name:          "Turmeric",
		Description:   "Ground root",
		Price:         decPtr("4.50"),
		StockQuantity: intPtr(10),
		Category:      "ground",
	}
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	m := testutil.CreateUser(t, env.db, "m@example.com", model.RoleMerchant, true)

	p, err := env.catalog.CreateProduct(ctx(), m.ID, validProduct())
	require.NoError(t, err)
	assert.Equal(t, m.ID, p.MerchantID)
	assert.Equal(t, model.DefaultQuantityUnit, p.QuantityUnit)
	assert.True(t, decimal.RequireFromString("4.5").Equal(p.Price))

	got, err := env.catalog.Product(ctx(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Turmeric", got.Name)

	_, err = env.catalog.Product(ctx(), 777)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	m := testutil.CreateUser(t, env.db, "m@example.com", model.RoleMerchant, true)

	mutate := map[string]func(*ProductInput){
		"missing name":        func(in *ProductInput) { in.Name = "" },
		"missing description": func(in *ProductInput) { in.Description = "" },
		"missing category":    func(in *ProductInput) { in.Category = "" },
		"missing price":       func(in *ProductInput) { in.Price = nil },
		"negative price":      func(in *ProductInput) { in.Price = decPtr("-1") },
		"missing stock":       func(in *ProductInput) { in.StockQuantity = nil },
		"negative stock":      func(in *ProductInput) { in.StockQuantity = intPtr(-1) },
		"bad image url":       func(in *ProductInput) { in.ImageURL = "not a url" },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			in := validProduct()
			fn(&in)
			_, err := env.catalog.CreateProduct(ctx(), m.ID, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	in := validProduct()
	in.Price = decPtr("0")
	in.StockQuantity = intPtr(0)
	_, err := env.catalog.CreateProduct(ctx(), m.ID, in)
	assert.NoError(t, err, "zero price and stock are allowed")
}

func TestMerchantProductOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner@example.com", model.RoleMerchant, true)
	other := testutil.CreateUser(t, env.db, "other@example.com", model.RoleMerchant, true)
	c := testutil.CreateUser(t, env.db, "c@example.com", model.RoleCustomer, true)

	p, err := env.catalog.CreateProduct(ctx(), owner.ID, validProduct())
	require.NoError(t, err)

	_, err = env.catalog.UpdateProduct(ctx(), other.ID, p.ID, ProductPatch{Name: strPtr("Stolen")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Product not found or access denied.", apperr.Message(err, ""))

	_, err = env.catalog.UpdateProduct(ctx(), owner.ID, p.ID, ProductPatch{Name: strPtr("")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := env.catalog.UpdateProduct(ctx(), owner.ID, p.ID, ProductPatch{StockQuantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.StockQuantity)
	assert.Equal(t, "Turmeric", updated.Name)

	own, err := env.catalog.MerchantProducts(ctx(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)
	theirs, err := env.catalog.MerchantProducts(ctx(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = env.carts.Add(ctx(), c.ID, p.ID, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, env.catalog.DeleteProduct(ctx(), other.ID, p.ID), apperr.ErrNotFound)
	require.NoError(t, env.catalog.DeleteProduct(ctx(), owner.ID, p.ID))

	cart, err := env.carts.View(ctx(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCatalogSearch(t *testing.T) {
	env := newTestEnv(t)
	m := testutil.CreateUser(t, env.db, "m@example.com", model.RoleMerchant, true)
	testutil.CreateProduct(t, env.db, m.ID, "Kashmiri Chili", "ground", 7)
	testutil.CreateProduct(t, env.db, m.ID, "Chili Flakes", "flakes", 3)

	got, err := env.catalog.Search(ctx(), repository.ProductQuery{Search: "chili", Sort: repository.SortByPriceLow})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Chili Flakes", got[0].Name)

	got, err = env.catalog.Search(ctx(), repository.ProductQuery{Category: "ground"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kashmiri Chili", got[0].Name)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	c := testutil.CreateUser(t, env.db, "c@example.com", model.RoleCustomer, true)

	_, err := env.profiles.Update(ctx(), c.ID, ProfileInput{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	addrs := []model.Address{kochi}
	u, err := env.profiles.Update(ctx(), c.ID, ProfileInput{Name: strPtr(" Cathy "), Addresses: &addrs})
	require.NoError(t, err)
	assert.Equal(t, "Cathy", u.Name)
	assert.Equal(t, addrs, u.Addresses)

	got, err := env.profiles.Get(ctx(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cathy", got.Name)

	_, err = env.profiles.Get(ctx(), 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdminMerchants(t *testing.T) {
	env := newTestEnv(t)
	pending := testutil.CreateUser(t, env.db, "p@example.com", model.RoleMerchant, false)
	testutil.CreateUser(t, env.db, "a@example.com", model.RoleMerchant, true)
	c := testutil.CreateUser(t, env.db, "c@example.com", model.RoleCustomer, true)

	list, err := env.admin.Merchants(ctx(), "pending")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	list, err = env.admin.Merchants(ctx(), "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = env.admin.Approve(ctx(), c.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Merchant not found.", apperr.Message(err, ""))

	removed, err := env.admin.Remove(ctx(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, removed.ID)
	_, err = env.admin.Remove(ctx(), pending.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
