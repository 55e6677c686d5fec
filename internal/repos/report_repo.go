package repos

import (
	"context"
	"fmt"

	"ecomapp/internal/domain"

	"github.com/shopspring/decimal"
)

type ReportRepo struct{ q Querier }

func NewReportRepo(q Querier) *ReportRepo { return &ReportRepo{q: q} }

type PeriodSales struct {
	Period  string          `db:"period"`
	Orders  int             `db:"orders"`
	Revenue decimal.Decimal `db:"revenue"`
}

type StatusSales struct {
	Status  domain.OrderStatus `db:"status"`
	Orders  int                `db:"orders"`
	Revenue decimal.Decimal    `db:"revenue"`
}

type ProductSales struct {
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Units     int             `db:"units"`
	Revenue   decimal.Decimal `db:"revenue"`
}

// periodExpr buckets orders.created_at into a sortable label. Weeks are
// ISO weeks on PostgreSQL and Monday-based %W weeks on SQLite.
func periodExpr(driver, period string) (string, error) {
	if driver == DriverPostgres {
		switch period {
		case "day":
			return `to_char(o.created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')`, nil
		case "week":
			return `to_char(o.created_at AT TIME ZONE 'UTC', 'IYYY-"W"IW')`, nil
		case "month":
			return `to_char(o.created_at AT TIME ZONE 'UTC', 'YYYY-MM')`, nil
		}
	} else {
		// created_at is stored as text; its first 19 characters are always
		// "YYYY-MM-DD HH:MM:SS", which strftime understands.
		switch period {
		case "day":
			return `strftime('%Y-%m-%d', substr(o.created_at, 1, 19))`, nil
		case "week":
			return `strftime('%Y-W%W', substr(o.created_at, 1, 19))`, nil
		case "month":
			return `strftime('%Y-%m', substr(o.created_at, 1, 19))`, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", period)
}

// SalesByPeriod sums non-cancelled orders per day, week or month, oldest first.
func (r *ReportRepo) SalesByPeriod(ctx context.Context, period string) ([]PeriodSales, error) {
	expr, err := periodExpr(r.q.DriverName(), period)
	if err != nil {
		return nil, err
	}
	out := []PeriodSales{}
	err = selectAll(ctx, r.q, &out, `
	  SELECT `+expr+` AS period, COUNT(*) AS orders, COALESCE(SUM(o.total_price), 0) AS revenue
	  FROM orders o
	  WHERE o.status <> ?
	  GROUP BY 1
	  ORDER BY 1
	`, domain.StatusCancelled)
	return out, err
}

func (r *ReportRepo) SalesByStatus(ctx context.Context) ([]StatusSales, error) {
	out := []StatusSales{}
	err := selectAll(ctx, r.q, &out, `
	  SELECT o.status, COUNT(*) AS orders, COALESCE(SUM(o.total_price), 0) AS revenue
	  FROM orders o
	  GROUP BY o.status
	  ORDER BY o.status
	`)
	return out, err
}

// TopProducts ranks products by units sold on non-cancelled orders, using
// the prices captured on each line.
func (r *ReportRepo) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	out := []ProductSales{}
	err := selectAll(ctx, r.q, &out, `
	  SELECT p.id AS product_id, p.name,
	         SUM(oi.quantity) AS units,
	         SUM(oi.quantity * oi.price) AS revenue
	  FROM order_items oi
	  JOIN orders o   ON o.id = oi.order_id
	  JOIN products p ON p.id = oi.product_id
	  WHERE o.status <> ?
	  GROUP BY p.id, p.name
	  ORDER BY units DESC, p.name, p.id
	  LIMIT ?
	`, domain.StatusCancelled, limit)
	return out, err
}
