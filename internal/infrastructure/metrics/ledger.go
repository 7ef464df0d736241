// Package metrics expone contadores Prometheus del libro de inventario.
package metrics

import (
	"net/http"

	"github.com/jhoicas/Obras-api/internal/application/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var _ ledger.Observer = (*LedgerObserver)(nil)

// LedgerObserver cuenta movimientos confirmados, cantidades movidas y rechazos por tipo de error.
type LedgerObserver struct {
	registry   *prometheus.Registry
	movements  *prometheus.CounterVec
	quantities *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

// NewLedgerObserver crea los contadores en un registro propio (más métricas de proceso y runtime de Go).
func NewLedgerObserver() *LedgerObserver {
	reg := prometheus.NewRegistry()
	o := &LedgerObserver{
		registry: reg,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_movements_total",
			Help: "Movimientos de inventario confirmados.",
		}, []string{"type"}),
		quantities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_movement_quantity_total",
			Help: "Cantidad acumulada movida por tipo.",
		}, []string{"type"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_rejections_total",
			Help: "Movimientos rechazados por tipo de error.",
		}, []string{"type", "reason"}),
	}
	reg.MustRegister(
		o.movements, o.quantities, o.rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return o
}

// MovementCommitted incrementa contadores tras el commit.
func (o *LedgerObserver) MovementCommitted(recordType string, quantity decimal.Decimal) {
	o.movements.WithLabelValues(recordType).Inc()
	q, _ := quantity.Float64()
	o.quantities.WithLabelValues(recordType).Add(q)
}

// MovementRejected cuenta un movimiento abortado; reason es el tipo de error de dominio.
func (o *LedgerObserver) MovementRejected(recordType, reason string) {
	o.rejections.WithLabelValues(recordType, reason).Inc()
}

// Registry registro con las métricas del servicio.
func (o *LedgerObserver) Registry() *prometheus.Registry {
	return o.registry
}

// Handler expone el registro en formato de texto Prometheus.
func (o *LedgerObserver) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
