package services

import (
	"context"
	"errors"
	"strings"

	"ecomapp/internal/domain"
	"ecomapp/internal/repos"

	"github.com/jmoiron/sqlx"
)

type InventoryService struct {
	db *sqlx.DB
	tx *repos.TxManager
}

func NewInventoryService(db *sqlx.DB) *InventoryService {
	return &InventoryService{db: db, tx: repos.NewTxManager(db)}
}

// reserve takes qty units of productID through q. It is the one stock
// primitive shared by Reserve and order placement. held is what the
// current transaction already took of the same product and is counted in
// both Available and Requested of a StockError.
func reserve(ctx context.Context, q repos.Querier, p domain.Product, qty, held int) error {
	inv := repos.NewInventoryRepo(q)
	err := inv.Decrement(ctx, p.ID, qty)
	if !errors.Is(err, repos.ErrInsufficientStock) {
		return err
	}
	available, serr := inv.Stock(ctx, p.ID)
	if serr != nil {
		return serr
	}
	return &domain.StockError{ProductID: p.ID, ProductName: p.Name, Available: available + held, Requested: qty + held}
}

// Reserve atomically takes qty units of a product, or fails without
// touching stock.
func (s *InventoryService) Reserve(ctx context.Context, productID string, qty int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Missing("productId")
	}
	if qty <= 0 {
		return domain.Invalid("quantity", "quantity must be a positive integer")
	}
	return s.tx.Transact(ctx, func(q repos.Querier) error {
		p, err := repos.NewProductRepo(q).Get(ctx, productID)
		if err != nil {
			return lookup(err, "product")
		}
		return reserve(ctx, q, p, qty, 0)
	})
}

// Restock sets the absolute stock of a product.
func (s *InventoryService) Restock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		return domain.Invalid("stock", "stock must not be negative")
	}
	return lookup(repos.NewInventoryRepo(s.db).SetStock(ctx, productID, stock), "product")
}

func (s *InventoryService) Availability(ctx context.Context, productID string) (domain.Availability, error) {
	qty, err := repos.NewInventoryRepo(s.db).Stock(ctx, productID)
	if err != nil {
		return domain.Availability{}, lookup(err, "product")
	}
	status := "OUT_OF_STOCK"
	switch {
	case qty >= 5:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}

func (s *InventoryService) List(ctx context.Context) ([]repos.InventoryRow, error) {
	return repos.NewInventoryRepo(s.db).ListAll(ctx)
}
