package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/utils/metrics"
)

// Metrics records request latency labelled by the matched route template
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Route templates keep label cardinality bounded
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequestDuration(c.Method(), path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
