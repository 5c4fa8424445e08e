// Package metrics define los contadores Prometheus del servicio. Viven
// en un paquete propio para evitar ciclos de import entre el store y
// las capas HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests HTTP por método, ruta y status",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "Latencia de requests HTTP en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"method", "route"})

	WarrantyTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warranty_transitions_total",
		Help: "Transiciones de estado de garantías",
	}, []string{"from", "to"})

	TransfersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warranty_transfers_created_total",
		Help: "Pedidos de transferencia creados",
	})

	TransfersAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warranty_transfers_accepted_total",
		Help: "Transferencias aceptadas",
	})

	RefundsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refunds_processed_total",
		Help: "Refunds procesados, por resultado",
	}, []string{"result"}) // processed | replayed | rejected

	TokenScans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_scans_total",
		Help: "Scans de tokens de garantía, por resultado",
	}, []string{"result"}) // ok | blocked | not_found

	StaleStateConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stale_state_conflicts_total",
		Help: "Updates guardados que perdieron la carrera contra otro admin",
	})
)

// Register registra las métricas en el registry dado (default si es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cs := []prometheus.Collector{
		HTTPRequests, HTTPDuration,
		WarrantyTransitions, TransfersCreated, TransfersAccepted,
		RefundsProcessed, TokenScans, StaleStateConflicts,
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
