package studio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric result labels
const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	// leadsTotal counts lead intake attempts.
	// result is one of "ok", "invalid", "duplicate", "notify_failed" or "error".
	leadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_leads_total",
			Help: "Total number of contact and newsletter submissions by outcome",
		},
		[]string{"kind", "result"},
	)

	// mediaOperationsTotal counts media store writes and deletes.
	mediaOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_media_operations_total",
			Help: "Total number of media attachment operations by outcome",
		},
		[]string{"op", "result"},
	)
)

func observeMedia(op string, err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	mediaOperationsTotal.WithLabelValues(op, result).Inc()
}
