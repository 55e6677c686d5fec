package repos

import (
	"context"
	"errors"

	"ecomapp/internal/domain"
)

// ErrInsufficientStock is returned by Decrement when the guarded update
// matched no row: the product exists but has fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryRepo struct{ q Querier }

func NewInventoryRepo(q Querier) *InventoryRepo { return &InventoryRepo{q: q} }

// InventoryRow backs the admin inventory listing.
type InventoryRow struct {
	ProductID     string `db:"product_id"`
	Name          string `db:"name"`
	StockCount    int    `db:"stock_count"`
	ArrivalStatus string `db:"arrival_status"`
}

func (r *InventoryRepo) ListAll(ctx context.Context) ([]InventoryRow, error) {
	rows := []InventoryRow{}
	err := selectAll(ctx, r.q, &rows, `
		SELECT id AS product_id, name, stock_count, arrival_status
		FROM products
		ORDER BY name, id
	`)
	return rows, err
}

// Stock returns the on-hand count; a missing product is sql.ErrNoRows.
func (r *InventoryRepo) Stock(ctx context.Context, productID string) (int, error) {
	var qty int
	err := get(ctx, r.q, &qty, `SELECT stock_count FROM products WHERE id = ?`, productID)
	return qty, err
}

// Decrement subtracts by units only if at least that many are on hand.
// The check and the write are one statement, so two transactions can never
// both take the last units.
func (r *InventoryRepo) Decrement(ctx context.Context, productID string, by int) error {
	err := execOne(ctx, r.q, `
		UPDATE products
		SET stock_count = stock_count - ?
		WHERE id = ? AND stock_count >= ?
	`, by, productID, by)
	if IsNotFound(err) {
		return ErrInsufficientStock
	}
	return err
}

// Increment returns units to stock, e.g. when an order is cancelled.
func (r *InventoryRepo) Increment(ctx context.Context, productID string, by int) error {
	return execOne(ctx, r.q, `
		UPDATE products SET stock_count = stock_count + ? WHERE id = ?
	`, by, productID)
}

// SetStock overwrites the count. Going from empty to non-empty marks the
// product RESTOCKED.
func (r *InventoryRepo) SetStock(ctx context.Context, productID string, qty int) error {
	return execOne(ctx, r.q, `
		UPDATE products
		SET arrival_status = CASE WHEN stock_count = 0 AND ? > 0 THEN ? ELSE arrival_status END,
		    stock_count = ?
		WHERE id = ?
	`, qty, domain.ArrivalRestocked, qty, productID)
}
