package handlers

import (
	"ecomapp/internal/domain"
	applog "ecomapp/internal/log"
	"ecomapp/internal/services"
	"ecomapp/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.Wish.List(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "wishlist.list", err)
	}
	return c.JSON(toWishlist(items))
}

type wishlistRequest struct {
	ProductID idParam `json:"product_id"`
}

func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	var req wishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "wishlist.add", bodyError(err, "product_id"))
	}
	pid, ok := validate.ID(req.ProductID.String())
	if !ok {
		return fail(c, "wishlist.add", domain.Missing("product_id"))
	}
	e, err := h.Wish.Add(c.UserContext(), currentUser(c), pid)
	if err != nil {
		return fail(c, "wishlist.add", err)
	}
	applog.Audit(c, "wishlist.add", map[string]any{"product_id": pid})
	return c.Status(fiber.StatusCreated).JSON(toWishlist([]domain.WishlistEntry{e})[0])
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return fail(c, "wishlist.remove", domain.NotFound("wishlist entry"))
	}
	if err := h.Wish.Remove(c.UserContext(), currentUser(c), pid); err != nil {
		return fail(c, "wishlist.remove", err)
	}
	applog.Audit(c, "wishlist.remove", map[string]any{"product_id": pid})
	return c.SendStatus(fiber.StatusNoContent)
}
