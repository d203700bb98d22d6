package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countOrders(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&n).Error)
	return n
}

func TestPlaceOrderAdministrative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.adminSession(t)
	require.NoError(t, f.carts.AddItem(ctx, sess, 1, 3))

	order, err := f.checkout.PlaceOrder(ctx, sess, " 1 Main St ")
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Nil(t, order.UserID)
	assert.Equal(t, AdminEmail, order.CustomerEmail)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "1 Main St", order.ShippingAddress)
	assert.InDelta(t, 7499.97, order.Total, 0.001)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 2499.99, order.Lines[0].UnitPrice)

	lines, err := f.carts.ListItems(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, lines)

	published := f.pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, order.ID, published[0].OrderID)
	assert.Equal(t, AdminID, published[0].PrincipalID)
	assert.Equal(t, string(domain.KindAdministrative), published[0].PrincipalKind)
}

func TestPlaceOrderRegisteredFreezesPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.userSession(t, "olga@example.com")
	require.NoError(t, f.carts.AddItem(ctx, sess, 1, 1))
	require.NoError(t, f.carts.AddItem(ctx, sess, 2, 2))

	order, err := f.checkout.PlaceOrder(ctx, sess, "")
	require.NoError(t, err)
	uid, _ := sess.Principal.UserID()
	require.NotNil(t, order.UserID)
	assert.Equal(t, uid, *order.UserID)
	require.Len(t, order.Lines, 2)
	assert.Zero(t, countCartRows(t, f))

	require.NoError(t, f.db.Model(&domain.Product{}).Where("id = ?", 1).Update("price", 1.00).Error)
	var stored domain.Order
	require.NoError(t, f.db.Preload("Lines").First(&stored, order.ID).Error)
	assert.Equal(t, 2499.99, stored.Lines[0].UnitPrice)
	assert.InDelta(t, order.Total, stored.Total, 0.001)
}

// beforeOrderInsert runs fn once, right before the orders row is written.
func beforeOrderInsert(t *testing.T, f *fixture, fn func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	err := f.db.Callback().Create().Before("gorm:create").Register("test:before_order_insert", func(tx *gorm.DB) {
		if tx.Statement.Table != "orders" || fired {
			return
		}
		fired = true
		fn(tx)
	})
	require.NoError(t, err)
}

func TestPlaceOrderKeepsRowsAddedDuringCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.userSession(t, "ria@example.com")
	uid, err := sess.Principal.UserID()
	require.NoError(t, err)
	require.NoError(t, f.carts.AddItem(ctx, sess, 1, 1))

	beforeOrderInsert(t, f, func(tx *gorm.DB) {
		db := tx.Session(&gorm.Session{NewDB: true})
		require.NoError(t, db.Create(&domain.CartItem{UserID: uid, ProductID: 5, Quantity: 1}).Error)
		require.NoError(t, db.Model(&domain.CartItem{}).
			Where("user_id = ? AND product_id = ?", uid, 1).
			Update("quantity", gorm.Expr("quantity + ?", 2)).Error)
	})

	order, err := f.checkout.PlaceOrder(ctx, sess, "")
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 1, order.Lines[0].Quantity)

	lines, err := f.carts.ListItems(ctx, sess)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint(1), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity, "units added mid-checkout stay in the cart")
	assert.Equal(t, uint(5), lines[1].ProductID)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestPlaceOrderKeepsSessionLinesAddedDuringCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.adminSession(t)
	require.NoError(t, f.carts.AddItem(ctx, sess, 1, 1))

	beforeOrderInsert(t, f, func(*gorm.DB) {
		err := f.sessions.UpdateCart(ctx, sess.ID, func(lines []domain.CartLine) ([]domain.CartLine, error) {
			lines[0].Quantity += 2
			return append(lines, domain.CartLine{ProductID: 5, Quantity: 1, Name: "late", Price: 10}), nil
		})
		require.NoError(t, err)
	})

	order, err := f.checkout.PlaceOrder(ctx, sess, "")
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)

	lines, err := f.carts.ListItems(ctx, sess)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint(1), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, uint(5), lines[1].ProductID)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.PlaceOrder(context.Background(), f.adminSession(t), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, countOrders(t, f))
	assert.Empty(t, f.pub.published())
}

func TestPlaceOrderFailureKeepsPersistentCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.userSession(t, "pia@example.com")
	require.NoError(t, f.carts.AddItem(ctx, sess, 1, 2))
	require.NoError(t, f.db.Migrator().DropTable(&domain.OrderLine{}))

	_, err := f.checkout.PlaceOrder(ctx, sess, "")
	assert.ErrorIs(t, err, domain.ErrStore)

	assert.Zero(t, countOrders(t, f), "order insert rolled back")
	lines, err := f.carts.ListItems(ctx, sess)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestPlaceOrderFailureKeepsSessionCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.adminSession(t)
	require.NoError(t, f.carts.AddItem(ctx, sess, 4, 1))
	require.NoError(t, f.db.Migrator().DropTable(&domain.OrderLine{}, &domain.Order{}))

	_, err := f.checkout.PlaceOrder(ctx, sess, "")
	assert.ErrorIs(t, err, domain.ErrStore)

	lines, err := f.carts.ListItems(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pub.err = errors.New("broker down")
	sess := f.adminSession(t)
	require.NoError(t, f.carts.AddItem(ctx, sess, 1, 1))

	_, err := f.checkout.PlaceOrder(ctx, sess, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), countOrders(t, f))
}

func TestListOrdersPaginatesAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.userSession(t, "quinn@example.com")
	var ids []uint
	for i := 0; i < 3; i++ {
		require.NoError(t, f.carts.AddItem(ctx, sess, uint(i+1), 1))
		order, err := f.checkout.PlaceOrder(ctx, sess, "")
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	page, err := f.checkout.ListOrders(ctx, sess, 1, 2)
	require.NoError(t, err)
	assert.False(t, page.Cached)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, ids[2], page.Orders[0].ID, "newest first")
	require.Len(t, page.Orders[0].Lines, 1)

	page, err = f.checkout.ListOrders(ctx, sess, 1, 2)
	require.NoError(t, err)
	assert.True(t, page.Cached)

	require.NoError(t, f.carts.AddItem(ctx, sess, 4, 1))
	_, err = f.checkout.PlaceOrder(ctx, sess, "")
	require.NoError(t, err)

	page, err = f.checkout.ListOrders(ctx, sess, 1, 2)
	require.NoError(t, err)
	assert.False(t, page.Cached, "placing an order invalidates the history cache")
	assert.Equal(t, int64(4), page.Total)
}

func TestListOrdersDefaultsAndIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.adminSession(t)
	user := f.userSession(t, "rui@example.com")
	require.NoError(t, f.carts.AddItem(ctx, user, 1, 1))
	_, err := f.checkout.PlaceOrder(ctx, user, "")
	require.NoError(t, err)

	page, err := f.checkout.ListOrders(ctx, admin, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultOrdersPageSize, page.PageSize)
	assert.Empty(t, page.Orders)
	assert.NotNil(t, page.Orders)

	page, err = f.checkout.ListOrders(ctx, user, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)
}
