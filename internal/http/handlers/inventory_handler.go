package handlers

import (
	"ecomapp/internal/domain"
	applog "ecomapp/internal/log"
	"ecomapp/internal/services"
	"ecomapp/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "missing productId", "field": "productId"})
	}
	avail, err := h.Inv.Availability(c.UserContext(), id)
	if err != nil {
		return fail(c, "inventory.availability", err)
	}
	return c.JSON(avail)
}

type updateStockRequest struct {
	ProductID idParam `json:"productId"`
	Quantity  *int    `json:"quantity"`
}

// UpdateStock takes units out of stock outside of an order.
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	var req updateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "inventory.reserve", bodyError(err, "productId"))
	}
	if req.ProductID == "" || req.Quantity == nil {
		return fail(c, "inventory.reserve", &domain.Error{
			Kind: domain.KindValidation, Field: "productId", Message: "Product ID and quantity are required",
		})
	}
	if err := h.Inv.Reserve(c.UserContext(), req.ProductID.String(), *req.Quantity); err != nil {
		return fail(c, "inventory.reserve", err)
	}
	applog.Audit(c, "inventory.reserve", map[string]any{"product_id": req.ProductID.String(), "quantity": *req.Quantity})
	return c.JSON(fiber.Map{"detail": "Stock updated successfully"})
}

// ---------- Admin ----------

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	rows, err := h.Inv.List(c.UserContext())
	if err != nil {
		return fail(c, "admin.inventory.list", err)
	}
	return c.JSON(rows)
}

type restockRequest struct {
	Stock *int `json:"stock"`
}

func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "product not found"})
	}
	var req restockRequest
	if err := c.BodyParser(&req); err != nil || req.Stock == nil {
		return fail(c, "admin.inventory.update", domain.Missing("stock"))
	}
	if err := h.Inv.Restock(c.UserContext(), id, *req.Stock); err != nil {
		return fail(c, "admin.inventory.update", err)
	}
	applog.Audit(c, "admin.inventory.update", map[string]any{"product_id": id, "stock": *req.Stock})
	avail, err := h.Inv.Availability(c.UserContext(), id)
	if err != nil {
		return fail(c, "admin.inventory.update", err)
	}
	return c.JSON(avail)
}
