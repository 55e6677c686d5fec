package services_test

import (
	"context"
	"errors"
	"testing"

	"ecomapp/internal/domain"
	"ecomapp/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryReserve(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	p := mkProduct(t, db, "Lamp", "20.00", 5)
	svc := services.NewInventoryService(db)

	require.NoError(t, svc.Reserve(ctx, p.ID, 3))
	assert.Equal(t, 2, stockOf(t, db, p.ID))

	err := svc.Reserve(ctx, p.ID, 3)
	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 2, stockOf(t, db, p.ID))

	assert.True(t, domain.IsKind(svc.Reserve(ctx, "missing", 1), domain.KindNotFound))
	assert.True(t, domain.IsKind(svc.Reserve(ctx, "", 1), domain.KindValidation))
	assert.True(t, domain.IsKind(svc.Reserve(ctx, p.ID, 0), domain.KindValidation))
}

func TestInventoryAvailability(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	svc := services.NewInventoryService(db)

	for _, tc := range []struct {
		stock  int
		status string
	}{
		{0, "OUT_OF_STOCK"},
		{1, "LOW_STOCK"},
		{4, "LOW_STOCK"},
		{5, "IN_STOCK"},
		{40, "IN_STOCK"},
	} {
		p := mkProduct(t, db, "Item", "1.00", tc.stock)
		a, err := svc.Availability(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Availability{Status: tc.status, Qty: tc.stock}, a)
	}

	_, err := svc.Availability(ctx, "missing")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestInventoryRestock(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	p := mkProduct(t, db, "Lamp", "20.00", 0)
	svc := services.NewInventoryService(db)

	require.NoError(t, svc.Restock(ctx, p.ID, 7))
	assert.Equal(t, 7, stockOf(t, db, p.ID))
	assert.True(t, domain.IsKind(svc.Restock(ctx, p.ID, -1), domain.KindValidation))
	assert.True(t, domain.IsKind(svc.Restock(ctx, "missing", 1), domain.KindNotFound))

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ArrivalRestocked, rows[0].ArrivalStatus)
}
