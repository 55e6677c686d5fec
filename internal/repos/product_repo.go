package repos

import (
	"context"
	"strings"

	"ecomapp/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ q Querier }

func NewProductRepo(q Querier) *ProductRepo { return &ProductRepo{q: q} }

const productColumns = `
    p.id, COALESCE(p.user_id,'') AS user_id, p.name,
    COALESCE(p.category_id,'') AS category_id, COALESCE(c.name,'') AS category_name,
    p.image, p.brand, p.info, p.rating, p.num_reviews, p.price, p.stock_count,
    p.arrival_status, p.created_at`

const productFrom = `
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id`

// List returns products matching f ordered by name (ties by id, so repeated
// calls with the same filter return the same sequence).
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		where = append(where, `LOWER(p.name) LIKE ?`)
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		where = append(where, `LOWER(c.name) = LOWER(?)`)
		args = append(args, cat)
	}
	if f.MinPrice != nil {
		where = append(where, `p.price >= ?`)
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, `p.price <= ?`)
		args = append(args, *f.MaxPrice)
	}

	out := []domain.Product{}
	err := selectAll(ctx, r.q, &out, `
	  SELECT `+productColumns+productFrom+`
	  WHERE `+strings.Join(where, " AND ")+`
	  ORDER BY p.name, p.id
	`, args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := get(ctx, r.q, &p, `SELECT `+productColumns+productFrom+` WHERE p.id = ?`, id)
	return p, err
}

// GetMany loads the given products keyed by id; missing ids are simply absent.
func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Product
	if err := selectIn(ctx, r.q, &rows, `SELECT `+productColumns+productFrom+` WHERE p.id IN (?)`, ids); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// Create inserts p, assigning its id and created_at.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.NewString()
	p.CreatedAt = now()
	if p.ArrivalStatus == "" {
		p.ArrivalStatus = domain.ArrivalNew
	}
	_, err := exec(ctx, r.q, `
	  INSERT INTO products(
	    id, user_id, name, category_id, image, brand, info, rating, num_reviews,
	    price, stock_count, arrival_status, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, nullable(p.UserID), p.Name, nullable(p.CategoryID), p.Image, p.Brand, p.Info,
		p.Rating, p.NumReviews, p.Price, p.StockCount, p.ArrivalStatus, p.CreatedAt)
	return err
}

// UpdatePrice changes the live catalog price. Existing order lines keep theirs.
func (r *ProductRepo) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	return execOne(ctx, r.q, `UPDATE products SET price = ? WHERE id = ?`, price, id)
}

// nullable maps "" to SQL NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
