package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricQuery = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beantag_store_query_total",
			Help: "Store operations by operation and result (ok, error).",
		},
		[]string{"op", "result"},
	)
	metricQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beantag_store_query_duration_seconds",
			Help:    "Store operation duration.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"op"},
	)
	metricOpenCursors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beantag_store_open_cursors",
			Help: "Cursors handed out by the store and not yet closed.",
		},
	)
)

// observe records one store operation. Use as
//
//	defer func(start time.Time) { observe("find", start, err) }(time.Now())
func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metricQuery.WithLabelValues(op, result).Inc()
	metricQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
