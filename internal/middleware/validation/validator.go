package validation

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	MaxBatchSize        int
	AllowedContentTypes []string
}

// Middleware rejects requests that cannot possibly be valid before they reach
// a handler: wrong content type, syntactically broken JSON on the predict
// routes, and oversized batches. Field-level validation stays in the handlers
// so error messages can name the offending field.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 100
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost {
			contentType := c.Get("Content-Type")
			allowed := false
			for _, allowedType := range cfg.AllowedContentTypes {
				if strings.Contains(contentType, allowedType) {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		path := c.Path()

		if c.Method() == fiber.MethodPost && strings.HasPrefix(path, "/predict") {
			if !json.Valid(c.Body()) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if strings.HasPrefix(path, "/predict/batch") {
				var req struct {
					Patients []json.RawMessage `json:"patients"`
				}
				if err := json.Unmarshal(c.Body(), &req); err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid request body",
					})
				}
				if len(req.Patients) > cfg.MaxBatchSize {
					return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
						"error": "Batch exceeds maximum size",
					})
				}
			}
		}

		return c.Next()
	}
}
