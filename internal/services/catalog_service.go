package services

import (
	"context"
	"strings"

	"ecomapp/internal/domain"
	"ecomapp/internal/repos"
	"ecomapp/internal/validate"

	"github.com/jmoiron/sqlx"
)

type CatalogService struct {
	db *sqlx.DB
}

func NewCatalogService(db *sqlx.DB) *CatalogService { return &CatalogService{db: db} }

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return repos.NewCategoryRepo(s.db).List(ctx)
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, domain.Invalid("min_price", "min_price must not exceed max_price")
	}
	return repos.NewProductRepo(s.db).List(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := repos.NewProductRepo(s.db).Get(ctx, id)
	return p, lookup(err, "product")
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	name, ok := validate.Name(name)
	if !ok {
		return domain.Category{}, domain.Missing("name")
	}
	c, err := repos.NewCategoryRepo(s.db).Create(ctx, name, strings.TrimSpace(description))
	if repos.IsUniqueViolation(err) {
		return domain.Category{}, domain.Conflict("category already exists")
	}
	return c, err
}

// CreateProduct validates p and stores it; p.UserID is the creating admin.
func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	name, ok := validate.Name(p.Name)
	if !ok {
		return domain.Product{}, domain.Missing("productName")
	}
	p.Name = name
	if !validate.NonNegativeMoney(p.Price) {
		return domain.Product{}, domain.Invalid("price", "price must be a non-negative amount with at most two decimals")
	}
	if p.StockCount < 0 {
		return domain.Product{}, domain.Invalid("stockCount", "stock must not be negative")
	}
	if p.CategoryID != "" {
		if _, err := repos.NewCategoryRepo(s.db).Get(ctx, p.CategoryID); err != nil {
			return domain.Product{}, lookup(err, "category")
		}
	}
	products := repos.NewProductRepo(s.db)
	if err := products.Create(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	return products.Get(ctx, p.ID)
}
