package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Product rows are always read joined with their (optional) category.
type Product struct {
	ID            string              `db:"id"`
	UserID        string              `db:"user_id"`
	Name          string              `db:"name"`
	CategoryID    string              `db:"category_id"`
	CategoryName  string              `db:"category_name"`
	Image         string              `db:"image"`
	Brand         string              `db:"brand"`
	Info          string              `db:"info"`
	Rating        decimal.NullDecimal `db:"rating"`
	NumReviews    int                 `db:"num_reviews"`
	Price         decimal.Decimal     `db:"price"`
	StockCount    int                 `db:"stock_count"`
	ArrivalStatus string              `db:"arrival_status"` // NEW | RESTOCKED | REGULAR
	CreatedAt     time.Time           `db:"created_at"`
}

const (
	ArrivalNew       = "NEW"
	ArrivalRestocked = "RESTOCKED"
	ArrivalRegular   = "REGULAR"
)

// ProductFilter narrows catalog listings. Zero values mean "no filter".
type ProductFilter struct {
	Keyword  string
	Category string // category name, case-insensitive exact match
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

type DeliveryLocation struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Latitude       float64   `db:"latitude"`
	Longitude      float64   `db:"longitude"`
	AddressDetails string    `db:"address_details"`
	CreatedAt      time.Time `db:"created_at"`
}

type WishlistEntry struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ProductID string    `db:"product_id"`
	AddedDate time.Time `db:"added_date"`
	Product   Product   `db:"-"`
}
