package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the generated RayID.
const HeaderName = "X-Ray-Id"

// New returns a Fiber middleware that assigns a unique RayID to every
// request. The id is stored in c.Locals("ray_id") and echoed in the response
// headers so clients can reference it when reporting problems.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := uuid.NewString()
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
