// Package metrics exports the loyalty domain counters to Prometheus.
//
// Collector implements services.Metrics. HTTP traffic is instrumented
// separately by middleware.Metrics; both end up on the same /metrics page
// when the collector is registered with prometheus.DefaultRegisterer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the domain collectors.
type Collector struct {
	cacheLookups   *prometheus.CounterVec
	cacheRebuilds  prometheus.Counter
	cacheVendors   prometheus.Gauge
	duplicates     prometheus.Counter
	ticketsIssued  prometheus.Counter
	ticketTargets  prometheus.Histogram
	deliveries     *prometheus.CounterVec
	liveTickets    prometheus.Gauge
	liveSessions   prometheus.Gauge
	redemptions    *prometheus.CounterVec
	rewardsGranted prometheus.Counter
}

// NewCollector builds a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loyalty_vendor_cache_lookups_total",
			Help: "Vendor directory reads by result (hit or miss).",
		}, []string{"result"}),
		cacheRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loyalty_vendor_cache_rebuilds_total",
			Help: "Vendor snapshots rebuilt from the store.",
		}),
		cacheVendors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loyalty_vendor_cache_size",
			Help: "Active vendors in the current snapshot.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loyalty_vendor_duplicates_removed_total",
			Help: "Duplicate vendor rows deleted by cleanup.",
		}),
		ticketsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loyalty_tickets_issued_total",
			Help: "Purchase tickets minted.",
		}),
		ticketTargets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loyalty_ticket_targets",
			Help:    "Vendors a ticket was sent to.",
			Buckets: []float64{1, 2, 5, 10, 25, 50},
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loyalty_ticket_deliveries_total",
			Help: "Ticket deliveries by result (ok or error).",
		}, []string{"result"}),
		liveTickets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loyalty_live_tickets",
			Help: "Tickets waiting to be redeemed.",
		}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loyalty_open_purchase_sessions",
			Help: "Customers between purchase request and vendor choice.",
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loyalty_redemptions_total",
			Help: "Redemption attempts by outcome.",
		}, []string{"outcome"}),
		rewardsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loyalty_rewards_granted_total",
			Help: "Stamp cards that reached the reward threshold.",
		}),
	}

	reg.MustRegister(
		c.cacheLookups,
		c.cacheRebuilds,
		c.cacheVendors,
		c.duplicates,
		c.ticketsIssued,
		c.ticketTargets,
		c.deliveries,
		c.liveTickets,
		c.liveSessions,
		c.redemptions,
		c.rewardsGranted,
	)
	return c
}

// CacheLookup counts a vendor directory read.
func (c *Collector) CacheLookup(hit bool) {
	c.cacheLookups.WithLabelValues(result(hit, "hit", "miss")).Inc()
}

// CacheRebuilt records a fresh snapshot of n vendors.
func (c *Collector) CacheRebuilt(n int) {
	c.cacheRebuilds.Inc()
	c.cacheVendors.Set(float64(n))
}

func (c *Collector) DuplicatesRemoved(n int) { c.duplicates.Add(float64(n)) }

// TicketIssued records a minted ticket sent to targets vendors.
func (c *Collector) TicketIssued(targets int) {
	c.ticketsIssued.Inc()
	c.ticketTargets.Observe(float64(targets))
}

func (c *Collector) DeliveryResult(ok bool) {
	c.deliveries.WithLabelValues(result(ok, "ok", "error")).Inc()
}

func (c *Collector) LiveTickets(n int)  { c.liveTickets.Set(float64(n)) }
func (c *Collector) LiveSessions(n int) { c.liveSessions.Set(float64(n)) }

// Redemption counts one redemption attempt.
func (c *Collector) Redemption(outcome string) {
	c.redemptions.WithLabelValues(outcome).Inc()
}

func (c *Collector) RewardGranted() { c.rewardsGranted.Inc() }

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
