package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/database"
	"github.com/sahilchouksey/taskboard-api/utils/response"
)

// HandleCheckHealth reports whether the database answers
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database is unavailable.")
	}
	return response.Success(c, "ok", nil)
}
