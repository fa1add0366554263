package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(pgPoolConnections) }

var pgPoolConnections = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "postgres_pool_connections",
		Help: "Connections held by the subscription store pool, sampled by the stats worker.",
	},
	[]string{"state"}, // 'total', 'idle', 'acquired'
)

func SetDBPoolStats(total, idle, acquired int32) {
	pgPoolConnections.WithLabelValues("total").Set(float64(total))
	pgPoolConnections.WithLabelValues("idle").Set(float64(idle))
	pgPoolConnections.WithLabelValues("acquired").Set(float64(acquired))
}
