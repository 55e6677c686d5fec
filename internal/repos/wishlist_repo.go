package repos

import (
	"context"

	"ecomapp/internal/domain"

	"github.com/google/uuid"
)

type WishlistRepo struct{ q Querier }

func NewWishlistRepo(q Querier) *WishlistRepo { return &WishlistRepo{q: q} }

// Add inserts an entry; a repeat (user, product) pair is a unique violation.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID string) (domain.WishlistEntry, error) {
	e := domain.WishlistEntry{ID: uuid.NewString(), UserID: userID, ProductID: productID, AddedDate: now()}
	_, err := exec(ctx, r.q, `
	  INSERT INTO wishlist(id, user_id, product_id, added_date) VALUES(?, ?, ?, ?)
	`, e.ID, e.UserID, e.ProductID, e.AddedDate)
	return e, err
}

// Remove deletes the entry; sql.ErrNoRows if there was none.
func (r *WishlistRepo) Remove(ctx context.Context, userID, productID string) error {
	return execOne(ctx, r.q, `DELETE FROM wishlist WHERE user_id = ? AND product_id = ?`, userID, productID)
}

// List returns the user's entries, newest first, with products attached.
func (r *WishlistRepo) List(ctx context.Context, userID string) ([]domain.WishlistEntry, error) {
	out := []domain.WishlistEntry{}
	if err := selectAll(ctx, r.q, &out, `
	  SELECT id, user_id, product_id, added_date
	  FROM wishlist
	  WHERE user_id = ?
	  ORDER BY added_date DESC, id
	`, userID); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]string, len(out))
	for i, e := range out {
		ids[i] = e.ProductID
	}
	products, err := NewProductRepo(r.q).GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Product = products[out[i].ProductID]
	}
	return out, nil
}
