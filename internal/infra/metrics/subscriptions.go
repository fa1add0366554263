package metrics

import (
	"meal-subscriptions/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsCreatedTotal,
		deliveryItemsCreatedTotal,
		subscriptionTransitionsTotal,
		itemTransitionsTotal,
		subscriptionsTotal,
	)
}

var (
	subscriptionsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "Subscriptions created, by plan cadence.",
		},
		[]string{"cadence"},
	)

	deliveryItemsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_items_created_total",
			Help: "Delivery items materialized.",
		},
	)

	subscriptionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_status_transitions_total",
			Help: "Subscription status changes, by target status and result.",
		},
		[]string{"status", "result"}, // result: 'ok', 'rejected'
	)

	itemTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_item_status_transitions_total",
			Help: "Delivery item status changes, by target status and result.",
		},
		[]string{"status", "result"},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"}, // 'pending', 'active', 'completed', 'cancelled'
	)
)

func IncSubscriptionCreated(cadence model.PlanCadence, items int) {
	subscriptionsCreatedTotal.WithLabelValues(norm(string(cadence))).Inc()
	deliveryItemsCreatedTotal.Add(float64(items))
}

func IncSubscriptionTransition(status model.SubscriptionStatus, ok bool) {
	subscriptionTransitionsTotal.WithLabelValues(norm(string(status)), result(ok)).Inc()
}

func IncItemTransition(status model.ItemStatus, ok bool) {
	itemTransitionsTotal.WithLabelValues(norm(string(status)), result(ok)).Inc()
}

// SetSubscriptionsTotal sets the gauge for every status; absent statuses read as zero.
func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	for _, status := range model.AllSubscriptionStatuses {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
