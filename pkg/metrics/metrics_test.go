package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/jhoicas/Confecciones-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	return metrics.New(reg, reg)
}

func TestMiddleware_CuentaPorRutaYEstado(t *testing.T) {
	m := newMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/orders/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/orders/:id", "GET", "404")))
}

func TestHandleEvent_CuentaEventosYCantidades(t *testing.T) {
	m := newMetrics()
	qty := decimal.NewFromInt(60)

	evt := event.New(event.InventoryReserved, time.Now())
	evt.Quantity = &qty
	require.NoError(t, m.HandleEvent(context.Background(), evt))
	require.NoError(t, m.HandleEvent(context.Background(), event.New(event.OrderCreated, time.Now())))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues(event.InventoryReserved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues(event.OrderCreated)))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.Quantity.WithLabelValues(event.InventoryReserved)))
}

func TestHandler_ExponeFormatoPrometheus(t *testing.T) {
	m := newMetrics()
	require.NoError(t, m.HandleEvent(context.Background(), event.New(event.TaskCreated, time.Now())))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "confecciones_domain_events_total")
}
