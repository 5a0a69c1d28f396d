package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores del motor de inventario. Registrados en el registry por defecto;
// se exponen en GET /metrics.
var (
	// StockReceived unidades ingresadas por recepciones de órdenes de compra.
	StockReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "inventory",
		Name:      "stock_received_units_total",
		Help:      "Unidades de stock ingresadas por recepción de órdenes de compra.",
	})

	// StockDepleted unidades retiradas por el motor FEFO.
	StockDepleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "inventory",
		Name:      "stock_depleted_units_total",
		Help:      "Unidades de stock retiradas por salidas FEFO.",
	})

	// Adjustments ajustes manuales registrados, por motivo.
	Adjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "inventory",
		Name:      "adjustments_total",
		Help:      "Ajustes manuales de stock registrados, por motivo.",
	}, []string{"reason"})

	// IdempotentReplays respuestas reproducidas desde el registro de idempotencia.
	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "http",
		Name:      "idempotent_replays_total",
		Help:      "Peticiones mutantes respondidas desde el caché de idempotencia.",
	})
)
