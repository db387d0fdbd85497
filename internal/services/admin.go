// Package services – administration
//
// AdminService hosts the admin-only flows: the state reset escape hatch and
// the two-step "arm, then send free text" inputs used to add vendors and to
// add or remove customers.
package services

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
)

// InputKind names the action an armed admin input will run.
type InputKind string

const (
	InputAddVendorNormal  InputKind = "add_vendor_normal"
	InputAddVendorPremium InputKind = "add_vendor_premium"
	InputAddCustomer      InputKind = "add_customer"
	InputRemoveCustomer   InputKind = "remove_customer"
)

// Valid reports whether k is a known kind.
func (k InputKind) Valid() bool {
	switch k {
	case InputAddVendorNormal, InputAddVendorPremium, InputAddCustomer, InputRemoveCustomer:
		return true
	}
	return false
}

// PendingInputs remembers which admin is expected to send which free text.
// Arming replaces any previous kind for that admin.
type PendingInputs struct {
	mu      sync.Mutex
	pending map[string]InputKind
}

// NewPendingInputs returns an empty set.
func NewPendingInputs() *PendingInputs {
	return &PendingInputs{pending: make(map[string]InputKind)}
}

// Arm records that adminID's next text is for kind.
func (p *PendingInputs) Arm(adminID string, kind InputKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		p.pending = make(map[string]InputKind)
	}
	p.pending[adminID] = kind
}

// Take removes and returns the armed kind of adminID.
func (p *PendingInputs) Take(adminID string) (InputKind, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	k, ok := p.pending[adminID]
	delete(p.pending, adminID)
	return k, ok
}

// Len reports the number of armed inputs.
func (p *PendingInputs) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Clear drops every armed input and returns how many there were.
func (p *PendingInputs) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.pending)
	p.pending = make(map[string]InputKind)
	return n
}

// ResetReport counts what Reset discarded.
type ResetReport struct {
	TicketsCleared            int `json:"tickets_cleared"`
	SessionsCleared           int `json:"sessions_cleared"`
	PendingAdminInputsCleared int `json:"pending_admin_inputs_cleared"`
}

// InputResult describes what a submitted admin input did.
type InputResult struct {
	Kind     InputKind        `json:"kind"`
	Vendor   *domain.Vendor   `json:"vendor,omitempty"`
	Customer *domain.Customer `json:"customer,omitempty"`
}

// AdminService groups the admin flows.
type AdminService struct {
	Vendors   *VendorDirectory
	Tickets   *TicketStore
	Sessions  *PurchaseSessions
	Pending   *PendingInputs
	Customers *CustomerService
	Metrics   Metrics
}

// Reset drops every piece of in-process state: the vendor snapshot, live
// tickets, purchase sessions and armed admin inputs. The record store is
// not touched. A second call in a row reports zeros.
func (a *AdminService) Reset(ctx context.Context) ResetReport {
	_, span := otel.Tracer("services/AdminService").Start(ctx, "Reset")
	defer span.End()

	a.Vendors.Invalidate()
	r := ResetReport{
		TicketsCleared:            a.Tickets.Clear(),
		SessionsCleared:           a.Sessions.Clear(),
		PendingAdminInputsCleared: a.Pending.Clear(),
	}
	m := metricsOrNop(a.Metrics)
	m.LiveTickets(0)
	m.LiveSessions(0)

	span.SetAttributes(
		attribute.Int("tickets", r.TicketsCleared),
		attribute.Int("sessions", r.SessionsCleared),
		attribute.Int("inputs", r.PendingAdminInputsCleared),
	)
	log.Info().
		Int("tickets", r.TicketsCleared).
		Int("sessions", r.SessionsCleared).
		Int("inputs", r.PendingAdminInputsCleared).
		Msg("in-process state reset")
	return r
}

// Arm prepares adminID to send the free text for kind.
func (a *AdminService) Arm(adminID string, kind InputKind) error {
	if !kind.Valid() {
		return ErrInvalidInput
	}
	a.Pending.Arm(adminID, kind)
	return nil
}

// SubmitPendingInput runs the action armed for adminID with text. Add
// actions expect "<id> <name>", removal expects "<id>". The armed input is
// consumed even when the text is rejected.
func (a *AdminService) SubmitPendingInput(ctx context.Context, adminID, text string) (InputResult, error) {
	kind, ok := a.Pending.Take(adminID)
	if !ok {
		return InputResult{}, ErrNoPendingInput
	}
	ctx, span := otel.Tracer("services/AdminService").Start(ctx, "SubmitPendingInput",
		trace.WithAttributes(attribute.String("kind", string(kind))),
	)
	defer span.End()

	res := InputResult{Kind: kind}
	text = strings.TrimSpace(text)

	switch kind {
	case InputAddVendorNormal, InputAddVendorPremium:
		id, name, ok := splitIDName(text)
		if !ok {
			return res, ErrInvalidInput
		}
		tier := domain.TierNormal
		if kind == InputAddVendorPremium {
			tier = domain.TierPremium
		}
		v, err := a.Vendors.AddVendor(ctx, id, name, tier)
		if err != nil {
			return res, err
		}
		res.Vendor = &v

	case InputAddCustomer:
		id, name, ok := splitIDName(text)
		if !ok {
			return res, ErrInvalidInput
		}
		c, err := a.Customers.AddCustomer(ctx, id, name)
		if err != nil {
			return res, err
		}
		res.Customer = &c

	case InputRemoveCustomer:
		c, err := a.Customers.RemoveCustomer(ctx, text)
		if err != nil {
			return res, err
		}
		res.Customer = &c
	}
	return res, nil
}

// splitIDName splits "<id> <name>" on the first space.
func splitIDName(text string) (string, string, bool) {
	id, name, found := strings.Cut(strings.TrimSpace(text), " ")
	name = strings.TrimSpace(name)
	if !found || id == "" || name == "" {
		return "", "", false
	}
	return id, name, true
}
