// Package services – redemption
//
// Redeemer consumes a ticket and credits exactly one stamp. The ticket is
// claimed (removed from the live set) before the first store write, so a
// concurrent second attempt with the same code sees it absent. If the store
// fails before the stamp is written the claim is restored and the code can
// be presented again.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/notify"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

// DefaultRewardThreshold is the stamp count that unlocks the reward.
const DefaultRewardThreshold = 10

// casAttempts bounds the conditional increment retries.
const casAttempts = 3

// ledgerTimeout bounds the store calls that follow a committed stamp.
const ledgerTimeout = 30 * time.Second

// Profile is what the chat platform tells us about the presenting user.
type Profile struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	return cleanName(p.FirstName + " " + p.LastName)
}

// Handle returns the @username form, or "".
func (p Profile) Handle() string {
	u := strings.TrimPrefix(strings.TrimSpace(p.Username), "@")
	if u == "" {
		return ""
	}
	return "@" + u
}

// RedemptionResult is the outcome of a successful redemption.
type RedemptionResult struct {
	CustomerID      string `json:"customer_id"`
	Stamps          int    `json:"stamps"`
	Threshold       int    `json:"threshold"`
	RewardTriggered bool   `json:"reward_triggered"`
	Registered      bool   `json:"registered"`
	VendorLabel     string `json:"vendor"`
}

// Redeemer applies tickets to the customer ledger.
type Redeemer struct {
	Store     RecordStore
	Tickets   *TicketStore
	Vendors   *VendorDirectory
	Notifier  notify.Notifier
	Threshold int
	SaleValue int
	Now       func() time.Time
	Metrics   Metrics
	Rows      *RowGuard

	locks    keyedMutex
	inflight sync.WaitGroup
}

// Redeem consumes code on behalf of customerID.
func (r *Redeemer) Redeem(ctx context.Context, customerID string, profile Profile, code string) (RedemptionResult, error) {
	ctx, span := otel.Tracer("services/Redeemer").Start(ctx, "Redeem",
		trace.WithAttributes(
			attribute.String("customer.id", customerID),
			attribute.String("ticket.code", redactCode(code)),
		),
	)
	defer span.End()

	m := metricsOrNop(r.Metrics)
	now := r.now()

	t, ok := r.Tickets.Claim(code, now)
	m.LiveTickets(r.Tickets.Len())
	if !ok {
		m.Redemption(OutcomeInvalid)
		span.SetAttributes(attribute.String("outcome", OutcomeInvalid))
		return RedemptionResult{}, ErrInvalidOrExpired
	}

	unlock := r.locks.Lock(customerID)
	defer unlock()
	release := r.Rows.read()
	defer release()

	res := RedemptionResult{CustomerID: customerID, Threshold: r.threshold(), VendorLabel: t.VendorLabel}

	stamps, registered, err := r.applyStamp(ctx, customerID, profile, t.Ticket, now)
	if err != nil {
		r.Tickets.Restore(t, r.now())
		m.LiveTickets(r.Tickets.Len())
		m.Redemption(OutcomeStoreFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger write failed")
		return RedemptionResult{}, err
	}
	res.Registered = registered
	res.Stamps = stamps

	// The stamp is committed: the remaining ledger steps must not be cut
	// short by the caller going away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerTimeout)
	defer cancel()

	r.appendHistory(ctx, customerID, t.VendorLabel, now)
	r.notifyVendor(ctx, customerID, t.Ticket, stamps, now)

	// Re-read: the row may have been edited out of band since the write.
	row, c, err := findCustomer(ctx, r.Store, customerID)
	if err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("re-read after stamp failed; using written value")
	} else {
		res.Stamps = c.Stamps
	}

	if res.Stamps >= res.Threshold {
		res.RewardTriggered = true
		m.RewardGranted()
		if row == 0 {
			row, _, err = findCustomer(ctx, r.Store, customerID)
		}
		if err == nil {
			err = r.Store.UpdateCell(ctx, domain.SheetCustomers, row, repo.CustomerColStamps, "0")
		}
		if err != nil {
			// The count stays at or above the threshold, so the next
			// redemption resets it.
			log.Error().Err(err).Str("customer_id", customerID).Msg("stamp reset failed")
		} else {
			res.Stamps = 0
		}
		log.Info().Str("customer_id", customerID).Msg("reward unlocked")
	}

	m.Redemption(OutcomeRedeemed)
	span.SetAttributes(
		attribute.String("outcome", OutcomeRedeemed),
		attribute.Int("stamps", res.Stamps),
		attribute.Bool("reward", res.RewardTriggered),
	)
	log.Info().
		Str("customer_id", customerID).
		Str("vendor", t.VendorLabel).
		Int("stamps", res.Stamps).
		Bool("registered", registered).
		Msg("ticket redeemed")
	return res, nil
}

// applyStamp writes exactly one stamp. It returns the count it wrote and
// whether the customer row was created. Any error means nothing was written.
func (r *Redeemer) applyStamp(ctx context.Context, customerID string, p Profile, t domain.Ticket, now time.Time) (int, bool, error) {
	row, err := r.Store.FindRow(ctx, domain.SheetCustomers, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		name := p.FullName()
		if name == "" {
			name = t.CustomerName
		}
		c := domain.Customer{
			ID:           customerID,
			Username:     p.Handle(),
			Name:         name,
			RegisteredOn: today(now),
			Stamps:       1,
			LastVendor:   t.VendorLabel,
		}
		if err := r.Store.AppendRow(ctx, domain.SheetCustomers, repo.EncodeCustomer(c)); err != nil {
			return 0, false, storeErr("register customer", err)
		}
		return 1, true, nil
	}
	if err != nil {
		return 0, false, storeErr("find customer", err)
	}

	stamps, err := r.increment(ctx, row)
	if err != nil {
		return 0, false, err
	}
	if err := r.Store.UpdateCell(context.WithoutCancel(ctx), domain.SheetCustomers, row, repo.CustomerColLastVendor, t.VendorLabel); err != nil {
		// The stamp is already committed; only the attribution is lost.
		log.Warn().Err(err).Str("customer_id", customerID).Msg("last vendor not recorded")
	}
	return stamps, false, nil
}

// increment adds one to the stamp cell of row. With a CellSwapper store the
// write is conditional on the value read, so a concurrent external edit is
// never overwritten.
func (r *Redeemer) increment(ctx context.Context, row int) (int, error) {
	swapper, conditional := r.Store.(CellSwapper)
	attempts := 1
	if conditional {
		attempts = casAttempts
	}
	for attempt := 0; attempt < attempts; attempt++ {
		cells, err := r.Store.ReadRow(ctx, domain.SheetCustomers, row)
		if err != nil {
			return 0, storeErr("read customer", err)
		}
		raw := ""
		if len(cells) >= repo.CustomerColStamps {
			raw = cells[repo.CustomerColStamps-1]
		}
		next := repo.ParseStamps(raw) + 1
		value := strconv.Itoa(next)

		if !conditional {
			if err := r.Store.UpdateCell(ctx, domain.SheetCustomers, row, repo.CustomerColStamps, value); err != nil {
				return 0, storeErr("write stamps", err)
			}
			return next, nil
		}
		ok, err := swapper.CompareAndSwapCell(ctx, domain.SheetCustomers, row, repo.CustomerColStamps, raw, value)
		if err != nil {
			return 0, storeErr("write stamps", err)
		}
		if ok {
			return next, nil
		}
	}
	return 0, fmt.Errorf("write stamps: %w: concurrent modification", ErrStoreUnavailable)
}

func (r *Redeemer) appendHistory(ctx context.Context, customerID, label string, now time.Time) {
	entry := domain.HistoryEntry{
		CustomerID:  customerID,
		At:          now,
		VendorLabel: label,
		Delta:       1,
		Category:    domain.CategoryPurchase,
	}
	if err := r.Store.AppendRow(ctx, domain.SheetHistory, repo.EncodeHistory(entry)); err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("history append failed")
	}
}

// notifyVendor tells the named vendor about the sale without blocking the
// redemption. Tickets sent to every vendor, or to an unknown one, notify
// nobody.
func (r *Redeemer) notifyVendor(ctx context.Context, customerID string, t domain.Ticket, stamps int, now time.Time) {
	if r.Notifier == nil || r.Vendors == nil {
		return
	}
	if t.VendorLabel == domain.AllVendorsLabel || t.VendorLabel == domain.UnknownVendorLabel || t.VendorLabel == "" {
		return
	}
	v, ok := r.Vendors.LookupByName(ctx, t.VendorLabel)
	if !ok {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sale confirmed\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", t.CustomerName)
	fmt.Fprintf(&b, "ID: %s\n", customerID)
	fmt.Fprintf(&b, "Stamp added: +1\n")
	fmt.Fprintf(&b, "Total: %d/%d stamps\n", stamps, r.threshold())
	if r.SaleValue > 0 {
		fmt.Fprintf(&b, "Sale value: $%d\n", r.SaleValue)
	}
	fmt.Fprintf(&b, "Time: %s", now.Format("15:04:05"))
	payload := notify.Payload{Text: b.String()}

	dctx := context.WithoutCancel(ctx)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		if err := r.Notifier.Deliver(dctx, v.ID, payload); err != nil {
			log.Warn().Err(err).Str("vendor_id", v.ID).Msg("sale notice failed")
			metricsOrNop(r.Metrics).DeliveryResult(false)
			return
		}
		metricsOrNop(r.Metrics).DeliveryResult(true)
	}()
}

// Drain waits for outstanding vendor notices or until ctx is done.
func (r *Redeemer) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Redeemer) threshold() int {
	if r.Threshold > 0 {
		return r.Threshold
	}
	return DefaultRewardThreshold
}

func (r *Redeemer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// keyedMutex serializes work per key. Entries are dropped when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
