package handlers

import (
	"ecomapp/internal/domain"
	applog "ecomapp/internal/log"
	"ecomapp/internal/services"
	"ecomapp/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Reports *services.ReportService
}

// GET /api/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.Auth.ListUsers(c.UserContext())
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	out := make([]*userView, 0, len(users))
	for i := range users {
		out = append(out, toUser(&users[i]))
	}
	return c.JSON(out)
}

// DELETE /api/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "admin.users.delete", domain.NotFound("user"))
	}
	if err := h.Auth.DeleteUser(c.UserContext(), currentUser(c), id); err != nil {
		return fail(c, "admin.users.delete", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target_user_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "admin.categories.create", domain.Invalid("body", "request body must be valid JSON"))
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return fail(c, "admin.categories.create", err)
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return c.Status(fiber.StatusCreated).JSON(toCategory(cat))
}

type productRequest struct {
	ProductName   string           `json:"productName"`
	Category      string           `json:"category"`
	Image         string           `json:"image"`
	ProductBrand  string           `json:"productBrand"`
	ProductInfo   string           `json:"productInfo"`
	ArrivalStatus string           `json:"arrival_status"`
	Price         *decimal.Decimal `json:"price"`
	StockCount    int              `json:"stockCount"`
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "admin.products.create", domain.Invalid("body", "request body must be valid JSON"))
	}
	if req.Price == nil {
		return fail(c, "admin.products.create", domain.Missing("price"))
	}
	switch req.ArrivalStatus {
	case "", domain.ArrivalNew, domain.ArrivalRestocked, domain.ArrivalRegular:
	default:
		return fail(c, "admin.products.create", domain.Invalid("arrival_status", "arrival_status must be NEW, RESTOCKED or REGULAR"))
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), domain.Product{
		UserID:        currentUser(c).ID,
		Name:          req.ProductName,
		CategoryID:    req.Category,
		Image:         req.Image,
		Brand:         req.ProductBrand,
		Info:          req.ProductInfo,
		ArrivalStatus: req.ArrivalStatus,
		Price:         *req.Price,
		StockCount:    req.StockCount,
	})
	if err != nil {
		return fail(c, "admin.products.create", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "stock": p.StockCount})
	return c.Status(fiber.StatusCreated).JSON(toProduct(p))
}

// GET /api/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.Orders.ListAll(c.UserContext(), validate.Limit(c.Query("limit"), 100, 500))
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	return c.JSON(toOrders(orders))
}

type statusRequest struct {
	Status string `json:"status"`
}

// PUT /api/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return fail(c, "admin.orders.update", domain.Missing("status"))
	}
	d, err := h.Orders.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return fail(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": d.ID, "status": d.Status})
	return c.JSON(toOrder(d))
}

// ---------- Reports ----------

type salesRow struct {
	Key     string `json:"key"`
	Orders  int    `json:"orders"`
	Revenue string `json:"revenue"`
}

// GET /api/admin/reports/sales?period=day|week|month
func (h *AdminHandler) SalesByPeriod(c *fiber.Ctx) error {
	period := c.Query("period", "day")
	rows, err := h.Reports.SalesByPeriod(c.UserContext(), period)
	if err != nil {
		return fail(c, "admin.reports.sales", err)
	}
	out := make([]salesRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, salesRow{Key: r.Period, Orders: r.Orders, Revenue: money(r.Revenue)})
	}
	return c.JSON(fiber.Map{"period": period, "rows": out})
}

// GET /api/admin/reports/status
func (h *AdminHandler) SalesByStatus(c *fiber.Ctx) error {
	rows, err := h.Reports.SalesByStatus(c.UserContext())
	if err != nil {
		return fail(c, "admin.reports.status", err)
	}
	out := make([]salesRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, salesRow{Key: string(r.Status), Orders: r.Orders, Revenue: money(r.Revenue)})
	}
	return c.JSON(fiber.Map{"rows": out})
}

type topProductRow struct {
	ProductID string `json:"product_id"`
	Name      string `json:"productName"`
	Units     int    `json:"units"`
	Revenue   string `json:"revenue"`
}

// GET /api/admin/reports/top-products?limit=n
func (h *AdminHandler) TopProducts(c *fiber.Ctx) error {
	limit := validate.Limit(c.Query("limit"), services.DefaultTopProducts, services.MaxTopProducts)
	rows, err := h.Reports.TopProducts(c.UserContext(), limit)
	if err != nil {
		return fail(c, "admin.reports.top", err)
	}
	out := make([]topProductRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, topProductRow{ProductID: r.ProductID, Name: r.Name, Units: r.Units, Revenue: money(r.Revenue)})
	}
	return c.JSON(fiber.Map{"limit": limit, "rows": out})
}
