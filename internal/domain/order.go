package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPaid      OrderStatus = "Paid"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether an order in status s may move to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Open orders still hold reserved stock that a cancellation gives back.
func (s OrderStatus) Open() bool { return s == StatusPending || s == StatusPaid }

type Order struct {
	ID                 string          `db:"id"`
	UserID             string          `db:"user_id"`
	DeliveryLocationID string          `db:"delivery_location_id"`
	PaymentMethod      string          `db:"payment_method"`
	ShippingPrice      decimal.Decimal `db:"shipping_price"`
	TotalPrice         decimal.Decimal `db:"total_price"`
	Status             OrderStatus     `db:"status"`
	IsPaid             bool            `db:"is_paid"`
	PaidAt             *time.Time      `db:"paid_at"`
	IsDelivered        bool            `db:"is_delivered"`
	DeliveredAt        *time.Time      `db:"delivered_at"`
	CreatedAt          time.Time       `db:"created_at"`
}

// OrderItem.Price is the unit price captured at checkout.
type OrderItem struct {
	ID        string          `db:"id"`
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// OrderLine is one item of an OrderDetail with its product expanded.
type OrderLine struct {
	OrderItem
	Product Product
}

// OrderDetail is a fully materialised order.
type OrderDetail struct {
	Order
	User     *User
	Location *DeliveryLocation
	Items    []OrderLine
}

// PlaceOrderLine is a caller-requested line; Price is the checkout price.
type PlaceOrderLine struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

type PlaceOrderLocation struct {
	Latitude       float64
	Longitude      float64
	AddressDetails string
}

type PlaceOrder struct {
	Location      *PlaceOrderLocation
	PaymentMethod string
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
	Items         []PlaceOrderLine
}

// ItemsTotal is sum(qty*price) + shipping, the server-side view of the total.
func (p PlaceOrder) ItemsTotal() decimal.Decimal {
	total := p.ShippingPrice
	for _, it := range p.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
