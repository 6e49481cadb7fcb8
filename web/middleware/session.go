package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie names the cookie carrying the storefront session id
const SessionCookie = "sid"

const sessionLocal = "SessionID"

// Session assigns every visitor a session id cookie. Carts, warehouse
// selections and order receipts are namespaced under it in the durable
// store, the way the original browser storage was scoped per client.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(SessionCookie)
		if sid == "" {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				HTTPOnly: true,
				SameSite: "Lax",
				MaxAge:   60 * 60 * 24 * 365,
			})
		}
		c.Locals(sessionLocal, sid)
		return c.Next()
	}
}

// SessionID returns the request's session id
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionLocal).(string)
	return sid
}
