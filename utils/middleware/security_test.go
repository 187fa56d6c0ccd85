package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	app := fiber.New()
	SetupSecurity(app, SecurityConfig{AllowedOrigins: "*", AccessLog: zap.New(core)})
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	for _, target := range []string{"/ok?page=2", "/missing"} {
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
		require.NoError(t, err)
	}

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "/ok", first["path"])
	assert.Equal(t, "page=2", first["query"])
	assert.EqualValues(t, fiber.StatusOK, first["status"])
	assert.NotEmpty(t, first["request_id"])

	second := entries[1].ContextMap()
	assert.Equal(t, "/missing", second["path"])
	assert.Equal(t, fiber.MethodGet, second["method"])
	assert.EqualValues(t, fiber.StatusNotFound, second["status"])
	assert.NotEmpty(t, second["request_id"])
	assert.NotEqual(t, first["request_id"], second["request_id"])

	// Entries must not change once later requests reuse the context
	assert.Equal(t, "/ok", first["path"])
}

func TestAccessLog_KeepsValuesAcrossRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	app := fiber.New()
	SetupSecurity(app, SecurityConfig{AllowedOrigins: "*", AccessLog: zap.New(core)})
	app.Get("/api/projects", func(c *fiber.Ctx) error { return c.SendString("projects") })
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	paths := []string{"/api/projects", "/healthz", "/api/projects"}
	for _, target := range paths {
		req := httptest.NewRequest(fiber.MethodGet, target, nil)
		req.Header.Set(fiber.HeaderXRequestID, "req"+target)
		_, err := app.Test(req)
		require.NoError(t, err)
	}

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, len(paths))
	for i, entry := range entries {
		fields := entry.ContextMap()
		assert.Equal(t, paths[i], fields["path"], "entry %d", i)
		assert.Equal(t, "req"+paths[i], fields["request_id"], "entry %d", i)
	}
}
