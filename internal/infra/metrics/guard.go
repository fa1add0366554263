package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(writeGuardRejectionsTotal) }

var writeGuardRejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "write_guard_rejections_total",
		Help: "Unsafe requests refused before reaching a handler.",
	},
	[]string{"guard"}, // 'rate_limit', 'in_progress'
)

func IncWriteGuardRejection(guard string) {
	writeGuardRejectionsTotal.WithLabelValues(norm(guard)).Inc()
}
