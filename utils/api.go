package utils

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/database"
	"github.com/sahilchouksey/taskboard-api/utils/response"
)

// MakeHTTPHandleFunc binds a store-aware handler to a plain fiber handler
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			return response.InternalServerError(c, "")
		}
		return nil
	}
}
