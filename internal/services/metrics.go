package services

// Metrics receives domain events from the services. The Prometheus
// collector in internal/metrics implements it; a nil Metrics is replaced by
// a no-op.
type Metrics interface {
	CacheLookup(hit bool)
	CacheRebuilt(vendors int)
	DuplicatesRemoved(n int)
	TicketIssued(targets int)
	DeliveryResult(ok bool)
	LiveTickets(n int)
	LiveSessions(n int)
	Redemption(outcome string)
	RewardGranted()
}

// Redemption outcomes reported to Metrics.
const (
	OutcomeRedeemed    = "redeemed"
	OutcomeInvalid     = "invalid_or_expired"
	OutcomeStoreFailed = "store_unavailable"
)

type nopMetrics struct{}

func (nopMetrics) CacheLookup(bool) {}
func (nopMetrics) CacheRebuilt(int) {}
func (nopMetrics) DuplicatesRemoved(int) {}
func (nopMetrics) TicketIssued(int) {}
func (nopMetrics) DeliveryResult(bool) {}
func (nopMetrics) LiveTickets(int) {}
func (nopMetrics) LiveSessions(int) {}
func (nopMetrics) Redemption(string) {}
func (nopMetrics) RewardGranted() {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
