package handlers

import (
	"fmt"

	"ecomapp/internal/domain"
	applog "ecomapp/internal/log"
	"ecomapp/internal/services"
	"ecomapp/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	Order *services.OrderService
}

type orderLineRequest struct {
	ProductID idParam          `json:"product_id"`
	Quantity  *int             `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

type locationRequest struct {
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	AddressDetails string   `json:"address_details"`
}

type orderRequest struct {
	OrderItems       []orderLineRequest `json:"order_items"`
	DeliveryLocation *locationRequest   `json:"delivery_location"`
	PaymentMethod    *string            `json:"payment_method"`
	ShippingPrice    *decimal.Decimal   `json:"shipping_price"`
	TotalPrice       *decimal.Decimal   `json:"total_price"`
}

// toPlaceOrder checks that every required field is present and converts
// the request. Value checks are left to the service.
func (r orderRequest) toPlaceOrder() (domain.PlaceOrder, error) {
	switch {
	case r.PaymentMethod == nil:
		return domain.PlaceOrder{}, domain.Missing("payment_method")
	case r.ShippingPrice == nil:
		return domain.PlaceOrder{}, domain.Missing("shipping_price")
	case r.TotalPrice == nil:
		return domain.PlaceOrder{}, domain.Missing("total_price")
	case len(r.OrderItems) == 0:
		return domain.PlaceOrder{}, domain.Missing("order_items")
	}
	in := domain.PlaceOrder{
		PaymentMethod: *r.PaymentMethod,
		ShippingPrice: *r.ShippingPrice,
		TotalPrice:    *r.TotalPrice,
		Items:         make([]domain.PlaceOrderLine, 0, len(r.OrderItems)),
	}
	for i, it := range r.OrderItems {
		switch {
		case it.ProductID == "":
			return domain.PlaceOrder{}, domain.Missing(fmt.Sprintf("order_items[%d].product_id", i))
		case it.Quantity == nil:
			return domain.PlaceOrder{}, domain.Missing(fmt.Sprintf("order_items[%d].quantity", i))
		case it.Price == nil:
			return domain.PlaceOrder{}, domain.Missing(fmt.Sprintf("order_items[%d].price", i))
		}
		in.Items = append(in.Items, domain.PlaceOrderLine{ProductID: it.ProductID.String(), Quantity: *it.Quantity, Price: *it.Price})
	}
	if loc := r.DeliveryLocation; loc != nil {
		switch {
		case loc.Latitude == nil:
			return domain.PlaceOrder{}, domain.Missing("delivery_location.latitude")
		case loc.Longitude == nil:
			return domain.PlaceOrder{}, domain.Missing("delivery_location.longitude")
		}
		in.Location = &domain.PlaceOrderLocation{
			Latitude: *loc.Latitude, Longitude: *loc.Longitude, AddressDetails: loc.AddressDetails,
		}
	}
	return in, nil
}

// POST /api/orders/create
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "order.place", bodyError(err, "product_id"))
	}
	in, err := req.toPlaceOrder()
	if err != nil {
		return fail(c, "order.place", err)
	}
	d, err := h.Order.Place(c.UserContext(), currentUser(c), in)
	if err != nil {
		return fail(c, "order.place", err)
	}

	serverTotal := in.ItemsTotal()
	applog.Audit(c, "order.place", map[string]any{
		"order_id":     d.ID,
		"items":        len(d.Items),
		"server_total": money(serverTotal),
		"client_total": money(in.TotalPrice),
		"mismatch":     !serverTotal.Equal(in.TotalPrice),
	})
	return c.Status(fiber.StatusCreated).JSON(toOrder(d))
}

// GET /api/orders/myorders
func (h *OrderHandler) Mine(c *fiber.Ctx) error {
	orders, err := h.Order.ListMine(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "orders.history", err)
	}
	return c.JSON(toOrders(orders))
}

// GET /api/orders/:id
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "orders.detail", domain.NotFound("order"))
	}
	d, err := h.Order.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		}
		return fail(c, "orders.detail", err)
	}
	return c.JSON(toOrder(d))
}

// POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "order.cancel", domain.NotFound("order"))
	}
	d, err := h.Order.Cancel(c.UserContext(), currentUser(c), id)
	if err != nil {
		return fail(c, "order.cancel", err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": d.ID})
	return c.JSON(toOrder(d))
}
