package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/loyalty-bot-backend/internal/services"
)

var _ services.Metrics = (*Collector)(nil)

func TestNewCollector_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.CacheLookup(true)
	c.Redemption(services.OutcomeRedeemed)
	c.DeliveryResult(true)

	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// Unlabeled collectors always report; labeled ones only once touched.
	if n != 11 {
		t.Fatalf("gathered %d series; want 11", n)
	}
}

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.CacheLookup(true)
	c.CacheLookup(true)
	c.CacheLookup(false)
	c.CacheRebuilt(4)
	c.DuplicatesRemoved(3)
	c.TicketIssued(2)
	c.DeliveryResult(true)
	c.DeliveryResult(false)
	c.Redemption(services.OutcomeRedeemed)
	c.Redemption(services.OutcomeInvalid)
	c.Redemption(services.OutcomeInvalid)
	c.RewardGranted()
	c.LiveTickets(5)
	c.LiveSessions(1)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"hits", testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")), 2},
		{"misses", testutil.ToFloat64(c.cacheLookups.WithLabelValues("miss")), 1},
		{"rebuilds", testutil.ToFloat64(c.cacheRebuilds), 1},
		{"cache size", testutil.ToFloat64(c.cacheVendors), 4},
		{"duplicates", testutil.ToFloat64(c.duplicates), 3},
		{"issued", testutil.ToFloat64(c.ticketsIssued), 1},
		{"delivered ok", testutil.ToFloat64(c.deliveries.WithLabelValues("ok")), 1},
		{"delivered error", testutil.ToFloat64(c.deliveries.WithLabelValues("error")), 1},
		{"redeemed", testutil.ToFloat64(c.redemptions.WithLabelValues(services.OutcomeRedeemed)), 1},
		{"invalid", testutil.ToFloat64(c.redemptions.WithLabelValues(services.OutcomeInvalid)), 2},
		{"rewards", testutil.ToFloat64(c.rewardsGranted), 1},
		{"live tickets", testutil.ToFloat64(c.liveTickets), 5},
		{"live sessions", testutil.ToFloat64(c.liveSessions), 1},
	}
	for _, tc := range checks {
		if tc.got != tc.want {
			t.Errorf("%s = %v; want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestCollector_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RewardGranted()

	want := `
# HELP loyalty_rewards_granted_total Stamp cards that reached the reward threshold.
# TYPE loyalty_rewards_granted_total counter
loyalty_rewards_granted_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "loyalty_rewards_granted_total"); err != nil {
		t.Fatal(err)
	}
}
