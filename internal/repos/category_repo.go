package repos

import (
	"context"

	"ecomapp/internal/domain"

	"github.com/google/uuid"
)

type CategoryRepo struct{ q Querier }

func NewCategoryRepo(q Querier) *CategoryRepo { return &CategoryRepo{q: q} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := selectAll(ctx, r.q, &out, `
	  SELECT id, name, description, created_at
	  FROM categories
	  ORDER BY name, id
	`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := get(ctx, r.q, &c, `SELECT id, name, description, created_at FROM categories WHERE id = ?`, id)
	return c, err
}

// Create inserts a category; a duplicate name surfaces as a unique violation.
func (r *CategoryRepo) Create(ctx context.Context, name, description string) (domain.Category, error) {
	c := domain.Category{ID: uuid.NewString(), Name: name, Description: description, CreatedAt: now()}
	_, err := exec(ctx, r.q, `
	  INSERT INTO categories(id, name, description, created_at) VALUES(?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.CreatedAt)
	return c, err
}
