package handlers

import (
	"sort"
	"strings"
	"time"

	"ecomapp/internal/web"
	applog "ecomapp/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const (
	MaxBodyBytes = 1 << 20

	globalLimit = 60
	loginLimit  = 5
	availLimit  = 15
)

// NewApp builds the HTTP surface. Access logging is skipped when quiet is set.
func NewApp(d *Deps, quiet bool) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = MaxBodyBytes

	app.Use(requestid.New())
	app.Use(applog.Timing())
	if !quiet {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(limiter.New(limiter.Config{
		Max:        globalLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "Too many requests. Please slow down."})
		},
	}))
	app.Use(Authenticate(d.Auth))

	loginLimiter := limiter.New(limiter.Config{
		Max:        loginLimit,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "Too many attempts. Please try again later."})
		},
	})
	availLimiter := limiter.New(limiter.Config{
		Max:        availLimit,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "rate limit exceeded, retry soon"})
		},
	})

	user := RequireUser()
	admin := RequireAdmin()

	api := app.Group("/api")
	api.Get("/", func(c *fiber.Ctx) error { return c.JSON(apiRoutes(app)) })

	// Catalog
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/products", d.SearchHandler.Products)
	api.Post("/products/update-stock", user, d.InventoryHandler.UpdateStock)
	api.Get("/products/:id/availability", availLimiter, d.InventoryHandler.Availability)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/product/:id", d.ProductHandler.Detail)

	// Users
	api.Post("/users/register", d.AuthHandler.Register)
	api.Get("/users/activate/:uid/:token", d.AuthHandler.Activate)
	api.Post("/users/login", loginLimiter, d.AuthHandler.Login)
	api.Post("/users/logout", user, d.AuthHandler.Logout)
	api.Get("/users/profile", user, d.AuthHandler.Profile)
	api.Get("/users", admin, d.AdminHandler.Users)
	api.Delete("/users/:id", admin, d.AdminHandler.DeleteUser)

	// Orders
	api.Post("/orders/create", user, d.OrderHandler.Create)
	api.Get("/orders/myorders", user, d.OrderHandler.Mine)
	api.Get("/orders", admin, d.AdminHandler.ListOrders)
	api.Get("/orders/:id", user, d.OrderHandler.Detail)
	api.Post("/orders/:id/cancel", user, d.OrderHandler.Cancel)
	api.Put("/orders/:id/status", admin, d.AdminHandler.UpdateOrderStatus)

	// Wishlist
	api.Get("/wishlist", user, d.WishlistHandler.List)
	api.Post("/wishlist", user, d.WishlistHandler.Add)
	api.Delete("/wishlist/:productId", user, d.WishlistHandler.Remove)

	// Admin
	adm := api.Group("/admin", admin)
	adm.Post("/categories", d.AdminHandler.CreateCategory)
	adm.Post("/products", d.AdminHandler.CreateProduct)
	adm.Get("/inventory", d.InventoryHandler.List)
	adm.Put("/products/:id/stock", d.InventoryHandler.Restock)
	adm.Get("/reports/sales", d.AdminHandler.SalesByPeriod)
	adm.Get("/reports/status", d.AdminHandler.SalesByStatus)
	adm.Get("/reports/top-products", d.AdminHandler.TopProducts)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found."})
	})
	return app
}

// apiRoutes lists the registered /api endpoints as "METHOD /path".
func apiRoutes(app *fiber.App) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range app.GetRoutes(true) {
		if r.Method == fiber.MethodHead || !strings.HasPrefix(r.Path, "/api/") {
			continue
		}
		k := r.Method + " " + r.Path
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
