package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestLoggerLabelsByRoutePattern(t *testing.T) {
	metrics := NewMetrics("logger_test")
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/agents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	for _, path := range []string{"/agents/1", "/agents/2", "/missing/1", "/missing/2"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/agents/:id", "GET", "204")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(UnmatchedRoute, "GET", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.requests))

	_, err := metrics.Gatherer().Gather()
	require.NoError(t, err)
}
