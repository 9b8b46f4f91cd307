// Package metrics expone métricas Prometheus del servidor HTTP y de los eventos de dominio.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "confecciones"

// Metrics agrupa los colectores de la aplicación.
type Metrics struct {
	gatherer  prometheus.Gatherer
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	Events    *prometheus.CounterVec
	Quantity  *prometheus.CounterVec
}

// New registra los colectores en reg. En producción se pasa prometheus.DefaultRegisterer;
// en pruebas un prometheus.NewRegistry() para no chocar entre casos.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route", "method"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "domain",
			Name:      "events_total",
			Help:      "Domain events published after commit.",
		}, []string{"type"}),
		Quantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "quantity_total",
			Help:      "Material quantity moved through the ledger, by operation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.Events, m.Quantity)
	return m
}

// Middleware mide cada petición; la ruta es el patrón registrado para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.Requests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route, c.Method()).Observe(float64(time.Since(start).Microseconds()) / 1000)
		return err
	}
}

// HandleEvent es un events.Handler que cuenta eventos y cantidades del libro.
func (m *Metrics) HandleEvent(_ context.Context, evt event.Event) error {
	m.Events.WithLabelValues(evt.Type).Inc()
	if evt.Quantity != nil {
		switch evt.Type {
		case event.InventoryReceived, event.InventoryReserved, event.InventoryReleased, event.InventoryConsumed:
			m.Quantity.WithLabelValues(evt.Type).Add(evt.Quantity.InexactFloat64())
		}
	}
	return nil
}

// Handler expone las métricas en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
