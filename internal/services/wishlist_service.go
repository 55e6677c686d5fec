package services

import (
	"context"

	"ecomapp/internal/domain"
	"ecomapp/internal/repos"

	"github.com/jmoiron/sqlx"
)

type WishlistService struct {
	db *sqlx.DB
}

func NewWishlistService(db *sqlx.DB) *WishlistService { return &WishlistService{db: db} }

// Add saves an out-of-stock product for the user.
func (s *WishlistService) Add(ctx context.Context, user *domain.User, productID string) (domain.WishlistEntry, error) {
	if productID == "" {
		return domain.WishlistEntry{}, domain.Missing("product_id")
	}
	p, err := repos.NewProductRepo(s.db).Get(ctx, productID)
	if err != nil {
		return domain.WishlistEntry{}, lookup(err, "product")
	}
	if p.StockCount > 0 {
		return domain.WishlistEntry{}, domain.BusinessRule("Only out-of-stock products can be added to the wishlist")
	}
	e, err := repos.NewWishlistRepo(s.db).Add(ctx, user.ID, p.ID)
	if repos.IsUniqueViolation(err) {
		return domain.WishlistEntry{}, domain.Conflict("Product is already in your wishlist")
	}
	if err != nil {
		return domain.WishlistEntry{}, err
	}
	e.Product = p
	return e, nil
}

func (s *WishlistService) Remove(ctx context.Context, user *domain.User, productID string) error {
	return lookup(repos.NewWishlistRepo(s.db).Remove(ctx, user.ID, productID), "wishlist entry")
}

func (s *WishlistService) List(ctx context.Context, user *domain.User) ([]domain.WishlistEntry, error) {
	return repos.NewWishlistRepo(s.db).List(ctx, user.ID)
}
