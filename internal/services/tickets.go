// Package services – voucher tickets
//
// A ticket is a single-use, time-boxed code bound to a customer, a vendor
// label and the stamp count at issue. TicketStore owns the live set; every
// lookup first discards expired entries. Issuer mints tickets and fans the
// QR depiction out to the selected vendors.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/notify"
)

// DefaultTicketTTL is the lifetime of a voucher.
const DefaultTicketTTL = 10 * time.Minute

// TicketStore is the mutex-guarded set of live tickets keyed by code.
type TicketStore struct {
	TTL time.Duration

	mu      sync.Mutex
	tickets map[string]domain.Ticket
	gen     uint64 // bumped by Clear
}

// ClaimedTicket is a ticket taken out of the live set, tagged with the
// store generation it was claimed in.
type ClaimedTicket struct {
	domain.Ticket
	gen uint64
}

// NewTicketStore returns an empty store.
func NewTicketStore(ttl time.Duration) *TicketStore {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketStore{TTL: ttl, tickets: make(map[string]domain.Ticket)}
}

// Put records t unless a live ticket already holds its code.
func (s *TicketStore) Put(t domain.Ticket, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	if s.tickets == nil {
		s.tickets = make(map[string]domain.Ticket)
	}
	if _, taken := s.tickets[t.Code]; taken {
		return false
	}
	s.tickets[t.Code] = t
	return true
}

// Claim sweeps expired tickets, then removes and returns the ticket for
// code. Only one caller can claim a given code.
func (s *TicketStore) Claim(code string, now time.Time) (ClaimedTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	t, ok := s.tickets[code]
	if !ok {
		return ClaimedTicket{}, false
	}
	delete(s.tickets, code)
	return ClaimedTicket{Ticket: t, gen: s.gen}, true
}

// Restore puts back a claimed ticket whose redemption did not apply. A
// ticket that expired in the meantime, or that was claimed before a Clear,
// is dropped.
func (s *TicketStore) Restore(c ClaimedTicket, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.gen != s.gen || s.expired(c.Ticket, now) {
		return
	}
	t := c.Ticket
	if s.tickets == nil {
		s.tickets = make(map[string]domain.Ticket)
	}
	s.tickets[t.Code] = t
}

// Peek reports whether code is live without consuming it.
func (s *TicketStore) Peek(code string, now time.Time) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	t, ok := s.tickets[code]
	return t, ok
}

// Sweep discards expired tickets and returns how many.
func (s *TicketStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

// Len reports the number of stored tickets.
func (s *TicketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// Clear drops every ticket and returns how many there were.
func (s *TicketStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.tickets)
	s.tickets = make(map[string]domain.Ticket)
	s.gen++
	return n
}

func (s *TicketStore) sweepLocked(now time.Time) int {
	n := 0
	for code, t := range s.tickets {
		if s.expired(t, now) {
			delete(s.tickets, code)
			n++
		}
	}
	return n
}

func (s *TicketStore) expired(t domain.Ticket, now time.Time) bool {
	return now.Sub(t.CreatedAt) > s.TTL
}

// IssueRequest describes a voucher to mint.
type IssueRequest struct {
	CustomerID    string
	DisplayName   string
	Targets       []string
	Label         string
	StampSnapshot int
}

// TicketHandle is what the caller learns about an issued ticket.
type TicketHandle struct {
	Code      string    `json:"code"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
	Delivered []string  `json:"delivered"`
	Failed    []string  `json:"failed,omitempty"`
}

// Issuer mints tickets and delivers them.
type Issuer struct {
	Tickets      *TicketStore
	Notifier     notify.Notifier
	DeepLinkBase string
	Threshold    int
	SaleValue    int
	Now          func() time.Time
	Metrics      Metrics

	// NewCode and Render default to newTicketCode and notify.RenderQR.
	NewCode func(now time.Time) string
	Render  func(link string) ([]byte, error)
}

// maxCodeAttempts bounds regeneration on a live-code collision.
const maxCodeAttempts = 5

// Issue records a ticket and delivers its depiction to every target
// concurrently. It succeeds if at least one delivery does. When every
// delivery fails the ticket stays live and ErrDeliveryFailed is returned
// together with the handle.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (TicketHandle, error) {
	ctx, span := otel.Tracer("services/Issuer").Start(ctx, "Issue",
		trace.WithAttributes(
			attribute.String("customer.id", req.CustomerID),
			attribute.Int("targets", len(req.Targets)),
		),
	)
	defer span.End()

	targets := uniqueTargets(req.Targets)
	if len(targets) == 0 {
		return TicketHandle{}, ErrNoVendors
	}

	now := i.now()
	t := domain.Ticket{
		CustomerID:    req.CustomerID,
		CustomerName:  req.DisplayName,
		VendorLabel:   req.Label,
		Targets:       targets,
		StampSnapshot: req.StampSnapshot,
		CreatedAt:     now,
	}
	if t.VendorLabel == "" {
		t.VendorLabel = domain.UnknownVendorLabel
	}

	stored := false
	for attempt := 0; attempt < maxCodeAttempts && !stored; attempt++ {
		t.Code = i.newCode(now)
		stored = i.Tickets.Put(t, now)
	}
	if !stored {
		return TicketHandle{}, fmt.Errorf("issue ticket: could not mint a unique code")
	}

	m := metricsOrNop(i.Metrics)
	m.TicketIssued(len(targets))
	m.LiveTickets(i.Tickets.Len())

	h := TicketHandle{
		Code:      t.Code,
		Link:      i.DeepLinkBase + t.Code,
		ExpiresAt: now.Add(i.Tickets.TTL),
	}
	span.SetAttributes(attribute.String("ticket.code", redactCode(t.Code)))

	render := i.Render
	if render == nil {
		render = notify.RenderQR
	}
	img, err := render(h.Link)
	if err != nil {
		log.Error().Err(err).Str("code", redactCode(t.Code)).Msg("render ticket depiction")
		h.Failed = targets
		m.DeliveryResult(false)
		return h, ErrDeliveryFailed
	}

	payload := notify.Payload{
		Text:      i.ticketText(t),
		Image:     img,
		ImageName: "ticket_" + req.CustomerID + ".png",
	}

	results := make([]error, len(targets))
	g, gCtx := errgroup.WithContext(ctx)
	for idx, target := range targets {
		g.Go(func() error {
			results[idx] = i.Notifier.Deliver(gCtx, target, payload)
			// Independent failure domains: never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()

	for idx, err := range results {
		if err != nil {
			log.Warn().Err(err).Str("vendor_id", targets[idx]).Msg("ticket delivery failed")
			h.Failed = append(h.Failed, targets[idx])
			m.DeliveryResult(false)
			continue
		}
		h.Delivered = append(h.Delivered, targets[idx])
		m.DeliveryResult(true)
	}

	if len(h.Delivered) == 0 {
		span.SetAttributes(attribute.Bool("delivered", false))
		return h, ErrDeliveryFailed
	}
	log.Info().
		Str("customer_id", req.CustomerID).
		Str("vendor", t.VendorLabel).
		Int("delivered", len(h.Delivered)).
		Msg("ticket issued")
	return h, nil
}

func (i *Issuer) ticketText(t domain.Ticket) string {
	threshold := i.Threshold
	if threshold <= 0 {
		threshold = 10
	}
	var b strings.Builder
	fmt.Fprintf(&b, "New purchase voucher\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", t.CustomerName)
	fmt.Fprintf(&b, "ID: %s\n", t.CustomerID)
	fmt.Fprintf(&b, "Stamps: %d/%d\n", t.StampSnapshot, threshold)
	fmt.Fprintf(&b, "Missing for reward: %d\n", max(threshold-t.StampSnapshot, 0))
	if i.SaleValue > 0 {
		fmt.Fprintf(&b, "Sale value: $%d\n", i.SaleValue)
	}
	fmt.Fprintf(&b, "Time: %s\n", t.CreatedAt.Format("15:04:05"))
	fmt.Fprintf(&b, "Valid for: %s\n\n", i.Tickets.TTL)
	b.WriteString("Show this code to the customer and let them scan it.")
	return b.String()
}

func (i *Issuer) newCode(now time.Time) string {
	if i.NewCode != nil {
		return i.NewCode(now)
	}
	return newTicketCode(now)
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// newTicketCode returns compra_<8 hex>_<unix seconds>.
func newTicketCode(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("%s%x_%d", domain.CodePrefix, u[:4], now.Unix())
}

// IsTicketCode reports whether s carries the redemption routing marker.
func IsTicketCode(s string) bool {
	return strings.HasPrefix(s, domain.CodePrefix) && len(s) > len(domain.CodePrefix)
}

// redactCode keeps only the routing marker and the first random digits.
func redactCode(code string) string {
	if len(code) <= len(domain.CodePrefix)+2 {
		return code
	}
	return code[:len(domain.CodePrefix)+2] + "…"
}

func uniqueTargets(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
