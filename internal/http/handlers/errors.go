package handlers

import (
	"errors"

	"ecomapp/internal/domain"
	applog "ecomapp/internal/log"

	"github.com/gofiber/fiber/v2"
)

const genericError = "Something went wrong. Please try again."

func statusOf(k domain.Kind) int {
	switch k {
	case domain.KindValidation, domain.KindBusinessRule, domain.KindInsufficientStock:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// fail writes err as a JSON problem body. Only domain errors reach the
// client verbatim; anything else is logged and replaced by a generic message.
func fail(c *fiber.Ctx, action string, err error) error {
	var se *domain.StockError
	if errors.As(err, &se) {
		applog.Info(c, action+".rejected", map[string]any{
			"product_id": se.ProductID, "requested": se.Requested, "available": se.Available,
		})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail":     se.Message(),
			"product_id": se.ProductID,
			"available":  se.Available,
			"requested":  se.Requested,
		})
	}

	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		switch de.Kind {
		case domain.KindValidation:
			applog.Security(c, "validation.fail", map[string]any{"action": action, "field": de.Field})
		case domain.KindUnauthorized, domain.KindForbidden:
			applog.Security(c, action+".denied", map[string]any{"reason": de.Message})
		}
		body := fiber.Map{"detail": de.Message}
		if de.Field != "" {
			body["field"] = de.Field
		}
		return c.Status(statusOf(de.Kind)).JSON(body)
	}

	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": genericError})
}

// ErrorHandler is the app-wide fallback for errors handlers return instead
// of writing themselves.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fe.Code).JSON(fiber.Map{"detail": genericError})
		}
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}
	return fail(c, "server.error", err)
}
