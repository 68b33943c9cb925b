package game

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics содержит Prometheus метрики очереди строительства
type Metrics struct {
	queueDepth    prometheus.Gauge
	enqueued      prometheus.Counter
	committed     prometheus.Counter
	superseded    prometheus.Counter
	drainDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// nil reg означает prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "builder",
			Name:      "queue_depth",
			Help:      "Количество заданий, ожидающих переноса.",
		}),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "builder",
			Name:      "jobs_enqueued_total",
			Help:      "Общее число поставленных заданий.",
		}),
		committed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "builder",
			Name:      "jobs_committed_total",
			Help:      "Клетки, перенесённые в базовый слой.",
		}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "builder",
			Name:      "jobs_superseded_total",
			Help:      "Задания, снятые без переноса (отмена или повтор).",
		}),
		drainDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "builder",
			Name:      "drain_duration_seconds",
			Help:      "Длительность одного переноса вместе с распространением соединений.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}

	reg.MustRegister(m.queueDepth, m.enqueued, m.committed, m.superseded, m.drainDuration)
	return m
}
