package handlers

import (
	"strings"

	"ecomapp/internal/domain"
	"ecomapp/internal/log"
	"ecomapp/internal/services"
	"ecomapp/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// Products lists the catalog, narrowed by keyword, category and price range.
func (h *SearchHandler) Products(c *fiber.Ctx) error {
	var f domain.ProductFilter

	if raw := c.Query("keyword"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "keyword", "value": raw})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Enter a valid keyword (letters/numbers only)", "field": "keyword",
			})
		}
		f.Keyword = q
	}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		name, ok := validate.Name(cat)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid category", "field": "category"})
		}
		f.Category = name
	}
	for _, bound := range []struct {
		field string
		dst   **decimal.Decimal
	}{
		{"min_price", &f.MinPrice},
		{"max_price", &f.MaxPrice},
	} {
		raw := c.Query(bound.field)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		d, ok := validate.Money(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": bound.field})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Enter a valid price", "field": bound.field})
		}
		*bound.dst = &d
	}

	products, err := h.Catalog.ListProducts(c.UserContext(), f)
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(toProducts(products))
}
