// Package metrics exposes the service's Prometheus instruments on the
// default registry; routes mounts promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartAdds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_cart_adds_total",
		Help: "Cart items successfully added.",
	})
	CartConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_cart_conflicts_total",
		Help: "Add attempts rejected by the availability check.",
	})
	CartConfirms = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_cart_confirms_total",
		Help: "Carts confirmed into loans.",
	})
	CartPartialFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_cart_confirm_partial_failures_total",
		Help: "Confirm sequences that failed partway through writing plates.",
	})
	CartExpirySweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_cart_expired_items_total",
		Help: "Cart items cancelled by the expiry sweep.",
	})
	ActiveCartItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slidelab_cart_active_items",
		Help: "Active, unexpired cart items across all users.",
	})

	ScanObservations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_scan_observations_total",
		Help: "Per-frame decode candidates fed to the consensus window.",
	})
	ScanAccepts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_scan_accepts_total",
		Help: "Codes accepted by the consensus detector.",
	})
	ScanEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slidelab_scan_window_evictions_total",
		Help: "Stale candidates evicted from the sliding window.",
	})
)
