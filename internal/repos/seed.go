package repos

import (
	"context"
	"log"

	"ecomapp/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Passw0rd!"

// SeedDemo fills an empty catalog with demo categories, products and users.
// It does nothing once any category exists.
func SeedDemo(ctx context.Context, db *sqlx.DB, bcryptCost int) error {
	var n int
	if err := get(ctx, db, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting demo categories/products/users")

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return err
	}

	return NewTxManager(db).Transact(ctx, func(q Querier) error {
		users := NewUserRepo(q)
		admin := &domain.User{Email: "admin@ecomapp.test", FirstName: "Admin", Hash: string(hash), Role: domain.RoleAdmin, IsActive: true}
		for _, u := range []*domain.User{
			admin,
			{Email: "alice@ecomapp.test", FirstName: "Alice", LastName: "Doe", Hash: string(hash), Role: domain.RoleUser, IsActive: true},
			{Email: "bob@ecomapp.test", FirstName: "Bob", LastName: "Roe", Hash: string(hash), Role: domain.RoleUser, IsActive: true},
		} {
			if err := users.Create(ctx, u); err != nil {
				return err
			}
		}

		cats := NewCategoryRepo(q)
		electronics, err := cats.Create(ctx, "Electronics", "Phones, laptops and accessories")
		if err != nil {
			return err
		}
		books, err := cats.Create(ctx, "Books", "Paperbacks and hardcovers")
		if err != nil {
			return err
		}

		products := NewProductRepo(q)
		for _, p := range []*domain.Product{
			{Name: "Wireless Headphones", CategoryID: electronics.ID, Brand: "Sonic", Info: "Over-ear, 30h battery", Price: decimal.RequireFromString("99.99"), StockCount: 12},
			{Name: "Mechanical Keyboard", CategoryID: electronics.ID, Brand: "Clack", Info: "Hot-swappable switches", Price: decimal.RequireFromString("129.00"), StockCount: 3},
			{Name: "USB-C Charger", CategoryID: electronics.ID, Brand: "Volt", Info: "65W GaN", Price: decimal.RequireFromString("39.50"), StockCount: 0, ArrivalStatus: domain.ArrivalRegular},
			{Name: "The Go Programming Language", CategoryID: books.ID, Brand: "Addison-Wesley", Info: "Donovan & Kernighan", Price: decimal.RequireFromString("34.99"), StockCount: 20},
		} {
			p.UserID = admin.ID
			p.Image = "/images/placeholder.png"
			if err := products.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}
