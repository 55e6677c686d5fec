package handlers

import "github.com/gofiber/fiber/v2"

// render serves an HTML page from the app's view engine.
func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = toUser(u)
	}
	c.Type("html", "utf-8")
	return c.Render(tmpl, data)
}
