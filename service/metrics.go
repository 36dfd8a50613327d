package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Begun    prometheus.Counter
	Finished prometheus.Counter
	Rejected *prometheus.CounterVec
	Sessions prometheus.Gauge
}

// NewMetrics registers the issuer metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Begun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boomerang",
			Subsystem: "issuance",
			Name:      "begun_total",
			Help:      "Issuance sessions opened with a valid first message.",
		}),
		Finished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boomerang",
			Subsystem: "issuance",
			Name:      "finished_total",
			Help:      "Issuance sessions answered with a signer response.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boomerang",
			Subsystem: "issuance",
			Name:      "rejected_total",
			Help:      "Rejected issuance requests by status code.",
		}, []string{"method", "code"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "boomerang",
			Subsystem: "issuance",
			Name:      "sessions",
			Help:      "Open issuance sessions.",
		}),
	}
	reg.MustRegister(m.Begun, m.Finished, m.Rejected, m.Sessions)
	return m
}
