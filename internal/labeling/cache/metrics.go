package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operations counts cache operations by type and result
var Operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vectrend_label_cache_operations_total",
	Help: "Total number of label cache operations",
}, []string{"operation", "status"})

func observe(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Operations.WithLabelValues(operation, status).Inc()
}
