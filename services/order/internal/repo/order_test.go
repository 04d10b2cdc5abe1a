package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderhub/pkg/apperr"
	"orderhub/services/order/internal/lifecycle"
	"orderhub/services/order/internal/models"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}))
	return &GormRepo{DB: db}
}

func seedOrder(t *testing.T, r *GormRepo) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber: "ORD-20260901-AAAA1111",
		UserID:      7,
		Status:      lifecycle.StatusPending,
		Items: []models.OrderItem{
			{ProductName: "Widget", Quantity: 2, UnitPrice: 29.99, TotalPrice: 59.98},
			{ProductName: "Gadget", Quantity: 1, UnitPrice: 10.00, TotalPrice: 10.00},
		},
	}
	order.RecomputeTotal()
	require.NoError(t, r.Create(context.Background(), order))
	return order
}

// A status change slipped in between ReplaceItems' read and its write must
// make the whole replacement fail: the conditional write matches zero rows.
// The query callback plays the interleaved writer, flipping the status on the
// transaction's own connection right after the read, so the guard sees a row
// whose status no longer matches what was validated.
func TestReplaceItemsLosesToConcurrentStatusChange(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	order := seedOrder(t, r)

	armed := false
	err := r.DB.Callback().Query().After("gorm:query").Register("flip_status_after_read", func(d *gorm.DB) {
		if !armed || d.Statement.Table != "orders" {
			return
		}
		armed = false
		_, execErr := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"UPDATE orders SET status = ? WHERE id = ?", lifecycle.StatusDelivered, order.ID)
		assert.NoError(t, execErr)
	})
	require.NoError(t, err)

	armed = true
	_, err = r.ReplaceItems(ctx, order.ID, []models.OrderItem{
		{ProductName: "Replacement", Quantity: 1, UnitPrice: 5.00, TotalPrice: 5.00},
	}, nil, lifecycle.ValidateUpdate)
	assert.ErrorIs(t, err, apperr.ErrOrderNotUpdatable)

	// Everything ran on the transaction's connection, so the rollback reverts
	// the lot: original items, total and status survive.
	got, err := r.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusPending, got.Status)
	assert.Len(t, got.Items, 2)
	assert.InDelta(t, 69.98, got.TotalAmount, 0.001)
}

func TestUpdateStatusLosesToConcurrentStatusChange(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	order := seedOrder(t, r)

	armed := false
	err := r.DB.Callback().Query().After("gorm:query").Register("flip_status_after_read", func(d *gorm.DB) {
		if !armed || d.Statement.Table != "orders" {
			return
		}
		armed = false
		_, execErr := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"UPDATE orders SET status = ? WHERE id = ?", lifecycle.StatusCancelled, order.ID)
		assert.NoError(t, execErr)
	})
	require.NoError(t, err)

	armed = true
	_, err = r.UpdateStatus(ctx, order.ID, lifecycle.StatusConfirmed, func(current string) error {
		return lifecycle.ValidateTransition(current, lifecycle.StatusConfirmed)
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidStatusTransition)

	got, err := r.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusPending, got.Status)
}

func TestReplaceItemsRecomputesTotal(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	order := seedOrder(t, r)

	got, err := r.ReplaceItems(ctx, order.ID, []models.OrderItem{
		{ProductName: "Replacement", Quantity: 3, UnitPrice: 5.00, TotalPrice: 15.00},
	}, nil, lifecycle.ValidateUpdate)
	require.NoError(t, err)
	assert.InDelta(t, 15.00, got.TotalAmount, 0.001)

	persisted, err := r.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Items, 1)
	assert.InDelta(t, 15.00, persisted.TotalAmount, 0.001)
}
