package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(planCacheLookupsTotal) }

// Cache names used by the plan repository decorator.
const (
	CachePlan     = "plan"
	CachePlanList = "plan_list"
)

var planCacheLookupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "plan_cache_lookups_total",
		Help: "Plan catalog reads served from redis (hit) or postgres (miss), by single plan or restaurant list.",
	},
	[]string{"cache", "result"}, // cache: 'plan', 'plan_list'
)

func IncPlanCacheLookup(cache string, hit bool) {
	res := "miss"
	if hit {
		res = "hit"
	}
	planCacheLookupsTotal.WithLabelValues(norm(cache), res).Inc()
}
