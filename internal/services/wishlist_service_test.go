package services_test

import (
	"context"
	"testing"

	"ecomapp/internal/domain"
	"ecomapp/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistRules(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	u := mkUser(t, db, "w@x.io", domain.RoleUser)
	inStock := mkProduct(t, db, "Available", "5.00", 3)
	soldOut := mkProduct(t, db, "Sold Out", "5.00", 0)
	svc := services.NewWishlistService(db)

	_, err := svc.Add(ctx, u, inStock.ID)
	assert.True(t, domain.IsKind(err, domain.KindBusinessRule))

	_, err = svc.Add(ctx, u, "missing")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	e, err := svc.Add(ctx, u, soldOut.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sold Out", e.Product.Name)

	_, err = svc.Add(ctx, u, soldOut.ID)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	list, err := svc.List(ctx, u)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, soldOut.ID, list[0].Product.ID)

	require.NoError(t, svc.Remove(ctx, u, soldOut.ID))
	assert.True(t, domain.IsKind(svc.Remove(ctx, u, soldOut.ID), domain.KindNotFound))
}
