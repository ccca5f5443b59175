package impl

import (
	"context"
	"math"
	"testing"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddOrUpdate(t *testing.T) {
	f := newServiceFixtures(t)
	ctx := context.Background()
	client := f.seedAccount(entity.RoleClient)
	soup := f.seedItem("Soup", 300, ptr[int64](10))
	bread := f.seedItem("Bread", 150, nil)

	view, err := f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: soup.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(600), view.Total)

	view, err = f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: bread.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(750), view.Total)

	// Adding an existing item replaces its quantity.
	view, err = f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: soup.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, view.Cart.Lines, 2)
	assert.Equal(t, int64(450), view.Total)

	stored := f.cartOf(t, client.ID)
	assert.Equal(t, view.Cart.Lines, stored.Lines)
}

func TestCartService_AddOrUpdateCapturesCurrentPrice(t *testing.T) {
	f := newServiceFixtures(t)
	ctx := context.Background()
	client := f.seedAccount(entity.RoleClient)
	item := f.seedItem("Coffee", 250, nil)

	_, err := f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: item.ID, Quantity: 1})
	require.NoError(t, err)

	f.store.SeedCatalogItem(&entity.CatalogItem{ID: item.ID, PartnerID: item.PartnerID, Name: item.Name, Price: 300})

	view, err := f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: item.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(300), view.Cart.Lines[0].UnitPrice)
	assert.Equal(t, int64(600), view.Total)
}

func TestCartService_AddOrUpdateRejectsBadInput(t *testing.T) {
	f := newServiceFixtures(t)
	ctx := context.Background()
	client := f.seedAccount(entity.RoleClient)
	item := f.seedItem("Soup", 300, nil)

	_, err := f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: item.ID, Quantity: 0})
	assert.Equal(t, domainerrors.KindInvalidInput, domainerrors.KindOf(err))

	_, err = f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, domainerrors.ErrCatalogItemNotFound)

	assert.True(t, f.cartOf(t, client.ID).IsEmpty())
}

func TestCartService_AddOrUpdateBoundsAmounts(t *testing.T) {
	f := newServiceFixtures(t)
	ctx := context.Background()
	client := f.seedAccount(entity.RoleClient)
	cheap := f.seedItem("Napkin", 500, nil)
	pricey := f.seedItem("Yacht", math.MaxInt64/2, nil)

	_, err := f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: cheap.ID, Quantity: math.MaxInt64 / 250})
	assert.Equal(t, domainerrors.KindInvalidInput, domainerrors.KindOf(err))

	_, err = f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: cheap.ID, Quantity: entity.MaxLineQuantity + 1})
	assert.Equal(t, domainerrors.KindInvalidInput, domainerrors.KindOf(err))

	_, err = f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: pricey.ID, Quantity: 3})
	assert.Equal(t, domainerrors.KindInvalidInput, domainerrors.KindOf(err))
	assert.True(t, f.cartOf(t, client.ID).IsEmpty())

	view, err := f.carts.AddOrUpdate(ctx, &usecase.CartItemInput{AccountID: client.ID, CatalogItemID: cheap.ID, Quantity: entity.MaxLineQuantity})
	require.NoError(t, err)
	assert.Equal(t, 500*entity.MaxLineQuantity, view.Total)
}

func TestCartService_Remove(t *testing.T) {
	f := newServiceFixtures(t)
	ctx := context.Background()
	client := f.seedAccount(entity.RoleClient)
	soup := f.seedItem("Soup", 300, nil)
	bread := f.seedItem("Bread", 150, nil)
	f.addToCart(t, client.ID, soup.ID, 1)
	f.addToCart(t, client.ID, bread.ID, 2)

	view, err := f.carts.Remove(ctx, client.ID, soup.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), view.Total)

	_, err = f.carts.Remove(ctx, client.ID, soup.ID)
	assert.ErrorIs(t, err, domainerrors.ErrCartLineNotFound)
	assert.Len(t, f.cartOf(t, client.ID).Lines, 1)
}

func TestCartService_Clear(t *testing.T) {
	f := newServiceFixtures(t)
	ctx := context.Background()
	client := f.seedAccount(entity.RoleClient)
	other := f.seedAccount(entity.RoleClient)
	item := f.seedItem("Soup", 300, nil)
	f.addToCart(t, client.ID, item.ID, 1)
	f.addToCart(t, other.ID, item.ID, 3)

	view, err := f.carts.Clear(ctx, client.ID)
	require.NoError(t, err)
	assert.Zero(t, view.Total)

	assert.True(t, f.cartOf(t, client.ID).IsEmpty())
	assert.Equal(t, int64(900), f.cartOf(t, other.ID).Total())
}
