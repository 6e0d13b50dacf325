package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records gateway traffic and cart state transitions.
type CartMetrics struct {
	gatewayDuration *prometheus.HistogramVec
	gatewayFailures *prometheus.CounterVec
	syncFailures    prometheus.Counter
	rollbacks       prometheus.Counter
	cartOpens       prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_gateway_duration_seconds",
		Help:    "Duration of remote cart gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	gatewayFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_gateway_failures",
		Help: "Failed remote cart gateway calls.",
	}, []string{"op"})
	syncFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_failures",
		Help: "Cart re-sync attempts that retained stale state.",
	})
	rollbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_optimistic_rollbacks",
		Help: "Optimistic quantity updates reverted after a gateway failure.",
	})
	cartOpens := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_open_signals",
		Help: "Cart-open UI signals raised after successful adds.",
	})
	reg.MustRegister(gatewayDuration, gatewayFailures, syncFailures, rollbacks, cartOpens)
	return &CartMetrics{
		gatewayDuration: gatewayDuration,
		gatewayFailures: gatewayFailures,
		syncFailures:    syncFailures,
		rollbacks:       rollbacks,
		cartOpens:       cartOpens,
	}
}

// ObserveGateway records the duration for the named gateway operation.
func (c *CartMetrics) ObserveGateway(op string, duration time.Duration) {
	if c == nil || c.gatewayDuration == nil {
		return
	}
	c.gatewayDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncGatewayFailure increments the failure counter for the named operation.
func (c *CartMetrics) IncGatewayFailure(op string) {
	if c == nil || c.gatewayFailures == nil {
		return
	}
	c.gatewayFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncSyncFailure counts a sync attempt that kept stale state.
func (c *CartMetrics) IncSyncFailure() {
	if c == nil || c.syncFailures == nil {
		return
	}
	c.syncFailures.Inc()
}

// IncRollback counts a reverted optimistic update.
func (c *CartMetrics) IncRollback() {
	if c == nil || c.rollbacks == nil {
		return
	}
	c.rollbacks.Inc()
}

// IncCartOpen counts a raised cart-open signal.
func (c *CartMetrics) IncCartOpen() {
	if c == nil || c.cartOpens == nil {
		return
	}
	c.cartOpens.Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
