package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ecomapp/internal/domain"
	"ecomapp/internal/repos"
	"ecomapp/internal/validate"

	"github.com/jmoiron/sqlx"
)

type OrderService struct {
	db *sqlx.DB
	tx *repos.TxManager
}

func NewOrderService(db *sqlx.DB) *OrderService {
	return &OrderService{db: db, tx: repos.NewTxManager(db)}
}

func validatePlaceOrder(in domain.PlaceOrder) error {
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return domain.Missing("payment_method")
	}
	if !validate.NonNegativeMoney(in.ShippingPrice) {
		return domain.Invalid("shipping_price", "shipping_price must be a non-negative amount")
	}
	if !validate.NonNegativeMoney(in.TotalPrice) {
		return domain.Invalid("total_price", "total_price must be a non-negative amount")
	}
	if len(in.Items) == 0 {
		return domain.Missing("order_items")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.Missing(fmt.Sprintf("order_items[%d].product_id", i))
		}
		if it.Quantity <= 0 {
			return domain.Invalid(fmt.Sprintf("order_items[%d].quantity", i), "quantity must be a positive integer")
		}
		if !validate.NonNegativeMoney(it.Price) {
			return domain.Invalid(fmt.Sprintf("order_items[%d].price", i), "price must be a non-negative amount")
		}
	}
	if loc := in.Location; loc != nil {
		if !validate.Latitude(loc.Latitude) {
			return domain.Invalid("delivery_location.latitude", "latitude must be between -90 and 90")
		}
		if !validate.Longitude(loc.Longitude) {
			return domain.Invalid("delivery_location.longitude", "longitude must be between -180 and 180")
		}
	}
	return nil
}

// Place reserves stock for every line and writes the order, its items and
// its delivery location in a single transaction. The first line that
// cannot be satisfied aborts everything.
func (s *OrderService) Place(ctx context.Context, user *domain.User, in domain.PlaceOrder) (domain.OrderDetail, error) {
	if user == nil {
		return domain.OrderDetail{}, domain.Unauthorized("authentication required")
	}
	if err := validatePlaceOrder(in); err != nil {
		return domain.OrderDetail{}, err
	}

	var detail domain.OrderDetail
	err := s.tx.Transact(ctx, func(q repos.Querier) error {
		products := repos.NewProductRepo(q)
		held := map[string]int{}
		for _, it := range in.Items {
			p, err := products.Get(ctx, it.ProductID)
			if err != nil {
				return lookup(err, fmt.Sprintf("product %s", it.ProductID))
			}
			if err := reserve(ctx, q, p, it.Quantity, held[p.ID]); err != nil {
				return err
			}
			held[p.ID] += it.Quantity
		}

		orders := repos.NewOrderRepo(q)
		o := domain.Order{
			UserID:        user.ID,
			PaymentMethod: strings.TrimSpace(in.PaymentMethod),
			ShippingPrice: in.ShippingPrice,
			TotalPrice:    in.TotalPrice,
		}
		if loc := in.Location; loc != nil {
			dl := domain.DeliveryLocation{
				UserID:         user.ID,
				Latitude:       loc.Latitude,
				Longitude:      loc.Longitude,
				AddressDetails: strings.TrimSpace(loc.AddressDetails),
			}
			if err := orders.CreateLocation(ctx, &dl); err != nil {
				return err
			}
			o.DeliveryLocationID = dl.ID
		}
		if err := orders.Create(ctx, &o); err != nil {
			return err
		}
		for _, it := range in.Items {
			item := domain.OrderItem{OrderID: o.ID, ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
			if err := orders.InsertItem(ctx, &item); err != nil {
				return err
			}
		}

		var err error
		detail, err = loadDetail(ctx, q, o.ID)
		return err
	})
	return detail, err
}

// loadDetail materialises an order with its user, location and lines.
func loadDetail(ctx context.Context, q repos.Querier, id string) (domain.OrderDetail, error) {
	orders := repos.NewOrderRepo(q)
	o, err := orders.Get(ctx, id)
	if err != nil {
		return domain.OrderDetail{}, lookup(err, "order")
	}
	d := domain.OrderDetail{Order: o, Items: []domain.OrderLine{}}

	if o.UserID != "" {
		u, err := repos.NewUserRepo(q).ByID(ctx, o.UserID)
		if err != nil && !repos.IsNotFound(err) {
			return domain.OrderDetail{}, err
		}
		d.User = u
	}
	if o.DeliveryLocationID != "" {
		loc, err := orders.Location(ctx, o.DeliveryLocationID)
		if err != nil && !repos.IsNotFound(err) {
			return domain.OrderDetail{}, err
		}
		if err == nil {
			d.Location = &loc
		}
	}

	items, err := orders.Items(ctx, id)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := repos.NewProductRepo(q).GetMany(ctx, ids)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	for _, it := range items {
		d.Items = append(d.Items, domain.OrderLine{OrderItem: it, Product: products[it.ProductID]})
	}
	return d, nil
}

// Get returns an order visible to viewer. Other users' orders look missing.
func (s *OrderService) Get(ctx context.Context, viewer *domain.User, id string) (domain.OrderDetail, error) {
	d, err := loadDetail(ctx, s.db, id)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if !canView(viewer, d.Order) {
		return domain.OrderDetail{}, domain.NotFound("order")
	}
	return d, nil
}

func canView(viewer *domain.User, o domain.Order) bool {
	return viewer != nil && (viewer.IsAdmin() || (o.UserID != "" && o.UserID == viewer.ID))
}

func (s *OrderService) ListMine(ctx context.Context, user *domain.User) ([]domain.Order, error) {
	return repos.NewOrderRepo(s.db).ListByUser(ctx, user.ID)
}

func (s *OrderService) ListAll(ctx context.Context, limit int) ([]domain.Order, error) {
	return repos.NewOrderRepo(s.db).ListLatest(ctx, limit)
}

// UpdateStatus moves an order along its lifecycle. Cancelling returns the
// order's items to stock.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (domain.OrderDetail, error) {
	next, ok := domain.ParseOrderStatus(strings.TrimSpace(status))
	if !ok {
		return domain.OrderDetail{}, domain.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	var detail domain.OrderDetail
	err := s.tx.Transact(ctx, func(q repos.Querier) error {
		o, err := repos.NewOrderRepo(q).Get(ctx, id)
		if err != nil {
			return lookup(err, "order")
		}
		if !o.Status.CanTransition(next) {
			return domain.Invalid("status", fmt.Sprintf("cannot change status from %s to %s", o.Status, next))
		}
		if err := transition(ctx, q, o, next); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, q, id)
		return err
	})
	return detail, err
}

// Cancel lets the owner cancel a Pending order and an admin cancel any
// order that has not shipped.
func (s *OrderService) Cancel(ctx context.Context, viewer *domain.User, id string) (domain.OrderDetail, error) {
	var detail domain.OrderDetail
	err := s.tx.Transact(ctx, func(q repos.Querier) error {
		o, err := repos.NewOrderRepo(q).Get(ctx, id)
		if err != nil {
			return lookup(err, "order")
		}
		if !canView(viewer, o) {
			return domain.NotFound("order")
		}
		switch {
		case !o.Status.CanTransition(domain.StatusCancelled):
			return domain.BusinessRule(fmt.Sprintf("a %s order cannot be cancelled", o.Status))
		case !viewer.IsAdmin() && o.Status != domain.StatusPending:
			return domain.BusinessRule("only pending orders can be cancelled")
		}
		if err := transition(ctx, q, o, domain.StatusCancelled); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, q, id)
		return err
	})
	return detail, err
}

// transition writes the status change and, for cancellations of open
// orders, gives the reserved units back.
func transition(ctx context.Context, q repos.Querier, o domain.Order, next domain.OrderStatus) error {
	orders := repos.NewOrderRepo(q)
	err := orders.Transition(ctx, o.ID, o.Status, next, time.Now().UTC())
	if repos.IsNotFound(err) {
		return domain.Conflict("order was modified concurrently, please retry")
	}
	if err != nil {
		return err
	}
	if next != domain.StatusCancelled || !o.Status.Open() {
		return nil
	}
	items, err := orders.Items(ctx, o.ID)
	if err != nil {
		return err
	}
	inv := repos.NewInventoryRepo(q)
	for _, it := range items {
		if err := inv.Increment(ctx, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("restock %s: %w", it.ProductID, err)
		}
	}
	return nil
}
