package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

// bind decodes a JSON body into dst.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body", "reason": err.Error()})
		return domain.Validation("request body must be a JSON object")
	}
	return nil
}

// pathID reads a positive integer path parameter.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": name})
		return 0, domain.Validation("%s must be a positive integer", name)
	}
	return id, nil
}
