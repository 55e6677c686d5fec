package handlers

import (
	"time"

	"ecomapp/internal/domain"

	"github.com/shopspring/decimal"
)

// Money is rendered as a fixed two-decimal string.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type categoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type categoryView struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategory(c domain.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

type productView struct {
	ID            string       `json:"_id"`
	User          *string      `json:"user"`
	ProductName   string       `json:"productName"`
	Category      *categoryRef `json:"category"`
	Image         string       `json:"image"`
	ProductBrand  string       `json:"productBrand"`
	ArrivalStatus string       `json:"arrival_status"`
	ProductInfo   string       `json:"productInfo"`
	Rating        *string      `json:"rating"`
	NumReviews    int          `json:"numReviews"`
	Price         string       `json:"price"`
	StockCount    int          `json:"stockCount"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func toProduct(p domain.Product) productView {
	v := productView{
		ID:            p.ID,
		User:          optString(p.UserID),
		ProductName:   p.Name,
		Image:         p.Image,
		ProductBrand:  p.Brand,
		ArrivalStatus: p.ArrivalStatus,
		ProductInfo:   p.Info,
		NumReviews:    p.NumReviews,
		Price:         money(p.Price),
		StockCount:    p.StockCount,
		CreatedAt:     p.CreatedAt,
	}
	if p.CategoryID != "" {
		v.Category = &categoryRef{ID: p.CategoryID, Name: p.CategoryName}
	}
	if p.Rating.Valid {
		r := money(p.Rating.Decimal)
		v.Rating = &r
	}
	return v
}

func toProducts(ps []domain.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

type userView struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"isAdmin"`
	IsActive bool   `json:"isActive"`
	Token    string `json:"token,omitempty"`
}

func toUser(u *domain.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{ID: u.ID, Username: u.Email, Email: u.Email, Name: u.DisplayName(), IsAdmin: u.IsAdmin(), IsActive: u.IsActive}
}

type locationView struct {
	ID             string    `json:"id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AddressDetails string    `json:"address_details"`
	CreatedAt      time.Time `json:"created_at"`
}

type orderItemView struct {
	ID       string      `json:"id"`
	Product  productView `json:"product"`
	Quantity int         `json:"quantity"`
	Price    string      `json:"price"`
}

type orderView struct {
	ID               string          `json:"id"`
	User             *userView       `json:"user"`
	DeliveryLocation *locationView   `json:"delivery_location"`
	PaymentMethod    string          `json:"payment_method"`
	ShippingPrice    string          `json:"shipping_price"`
	TotalPrice       string          `json:"total_price"`
	Status           string          `json:"status"`
	IsPaid           bool            `json:"is_paid"`
	PaidAt           *time.Time      `json:"paid_at"`
	IsDelivered      bool            `json:"is_delivered"`
	DeliveredAt      *time.Time      `json:"delivered_at"`
	CreatedAt        time.Time       `json:"created_at"`
	Items            []orderItemView `json:"items,omitempty"`
}

func toOrderSummary(o domain.Order) orderView {
	return orderView{
		ID:            o.ID,
		PaymentMethod: o.PaymentMethod,
		ShippingPrice: money(o.ShippingPrice),
		TotalPrice:    money(o.TotalPrice),
		Status:        string(o.Status),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
	}
}

func toOrders(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderSummary(o))
	}
	return out
}

func toOrder(d domain.OrderDetail) orderView {
	v := toOrderSummary(d.Order)
	v.User = toUser(d.User)
	if l := d.Location; l != nil {
		v.DeliveryLocation = &locationView{
			ID: l.ID, Latitude: l.Latitude, Longitude: l.Longitude,
			AddressDetails: l.AddressDetails, CreatedAt: l.CreatedAt,
		}
	}
	v.Items = make([]orderItemView, 0, len(d.Items))
	for _, it := range d.Items {
		v.Items = append(v.Items, orderItemView{
			ID: it.ID, Product: toProduct(it.Product), Quantity: it.Quantity, Price: money(it.Price),
		})
	}
	return v
}

type wishlistView struct {
	ID        string      `json:"id"`
	Product   productView `json:"product"`
	AddedDate time.Time   `json:"added_date"`
}

func toWishlist(es []domain.WishlistEntry) []wishlistView {
	out := make([]wishlistView, 0, len(es))
	for _, e := range es {
		out = append(out, wishlistView{ID: e.ID, Product: toProduct(e.Product), AddedDate: e.AddedDate})
	}
	return out
}
