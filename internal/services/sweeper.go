package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically drops expired tickets and purchase sessions. It only
// bounds memory; every lookup already ignores expired entries.
type Sweeper struct {
	Tickets  *TicketStore
	Sessions *PurchaseSessions
	Interval time.Duration
	Now      func() time.Time
	Metrics  Metrics
}

// SweepOnce runs a single pass and returns what it removed.
func (s *Sweeper) SweepOnce() (tickets, sessions int) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if s.Tickets != nil {
		tickets = s.Tickets.Sweep(now)
		metricsOrNop(s.Metrics).LiveTickets(s.Tickets.Len())
	}
	if s.Sessions != nil {
		sessions = s.Sessions.Sweep(now)
		metricsOrNop(s.Metrics).LiveSessions(s.Sessions.Len())
	}
	return tickets, sessions
}

// Run sweeps every Interval until ctx is done. A non-positive interval
// returns immediately.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t, ss := s.SweepOnce(); t+ss > 0 {
				log.Debug().Int("tickets", t).Int("sessions", ss).Msg("expired state swept")
			}
		}
	}
}
