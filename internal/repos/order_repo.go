package repos

import (
	"context"
	"time"

	"ecomapp/internal/domain"

	"github.com/google/uuid"
)

type OrderRepo struct{ q Querier }

func NewOrderRepo(q Querier) *OrderRepo { return &OrderRepo{q: q} }

const orderColumns = `
	o.id, COALESCE(o.user_id,'') AS user_id,
	COALESCE(o.delivery_location_id,'') AS delivery_location_id,
	o.payment_method, o.shipping_price, o.total_price, o.status,
	o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at`

// CreateLocation inserts loc, assigning its id and created_at.
func (r *OrderRepo) CreateLocation(ctx context.Context, loc *domain.DeliveryLocation) error {
	loc.ID = uuid.NewString()
	loc.CreatedAt = now()
	_, err := exec(ctx, r.q, `
	  INSERT INTO delivery_locations(id, user_id, latitude, longitude, address_details, created_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, loc.ID, nullable(loc.UserID), loc.Latitude, loc.Longitude, loc.AddressDetails, loc.CreatedAt)
	return err
}

func (r *OrderRepo) Location(ctx context.Context, id string) (domain.DeliveryLocation, error) {
	var loc domain.DeliveryLocation
	err := get(ctx, r.q, &loc, `
	  SELECT id, COALESCE(user_id,'') AS user_id, latitude, longitude, address_details, created_at
	  FROM delivery_locations WHERE id = ?
	`, id)
	return loc, err
}

// Create inserts a new order header in status Pending.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	o.ID = uuid.NewString()
	o.CreatedAt = now()
	o.Status = domain.StatusPending
	_, err := exec(ctx, r.q, `
	  INSERT INTO orders(
	    id, user_id, delivery_location_id, payment_method, shipping_price, total_price,
	    status, is_paid, is_delivered, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, nullable(o.UserID), nullable(o.DeliveryLocationID), o.PaymentMethod,
		o.ShippingPrice, o.TotalPrice, o.Status, false, false, o.CreatedAt)
	return err
}

// InsertItem inserts a single line item.
func (r *OrderRepo) InsertItem(ctx context.Context, it *domain.OrderItem) error {
	it.ID = uuid.NewString()
	_, err := exec(ctx, r.q, `
	  INSERT INTO order_items(id, order_id, product_id, quantity, price)
	  VALUES(?, ?, ?, ?, ?)
	`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := get(ctx, r.q, &o, `SELECT `+orderColumns+` FROM orders o WHERE o.id = ?`, id)
	return o, err
}

// Items returns the lines of an order, ordered by product name.
func (r *OrderRepo) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := selectAll(ctx, r.q, &out, `
	  SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY p.name, oi.id
	`, orderID)
	return out, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := selectAll(ctx, r.q, &out, `
	  SELECT `+orderColumns+`
	  FROM orders o
	  WHERE o.user_id = ?
	  ORDER BY o.created_at DESC, o.id
	`, userID)
	return out, err
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := selectAll(ctx, r.q, &out, `
	  SELECT `+orderColumns+`
	  FROM orders o
	  ORDER BY o.created_at DESC, o.id
	  LIMIT ?
	`, limit)
	return out, err
}

// Transition moves an order from one status to another. The current status
// is part of the WHERE clause, so a concurrent transition makes this one
// match nothing and return sql.ErrNoRows.
func (r *OrderRepo) Transition(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error {
	switch to {
	case domain.StatusPaid:
		return execOne(ctx, r.q, `
		  UPDATE orders SET status = ?, is_paid = ?, paid_at = ? WHERE id = ? AND status = ?
		`, to, true, at, id, from)
	case domain.StatusDelivered:
		return execOne(ctx, r.q, `
		  UPDATE orders SET status = ?, is_delivered = ?, delivered_at = ? WHERE id = ? AND status = ?
		`, to, true, at, id, from)
	}
	return execOne(ctx, r.q, `UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
}

// DetachUser clears the owner of every order placed by userID; orders are
// kept for reporting.
func (r *OrderRepo) DetachUser(ctx context.Context, userID string) error {
	_, err := exec(ctx, r.q, `UPDATE orders SET user_id = NULL WHERE user_id = ?`, userID)
	return err
}
