package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
)

// ChoiceAll selects every active vendor as ticket target.
const ChoiceAll = "todos"

// VendorChoice is one selectable vendor.
type VendorChoice struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Tier    domain.Tier `json:"tier"`
	Premium bool        `json:"premium"`
}

// PurchaseOptions is returned when a purchase request is opened.
type PurchaseOptions struct {
	CustomerName string         `json:"customer_name"`
	Vendors      []VendorChoice `json:"vendors"`
	AnyVendor    string         `json:"any_vendor"`
}

// PurchaseReceipt is returned once a vendor was selected and the ticket
// issued.
type PurchaseReceipt struct {
	Ticket      TicketHandle `json:"ticket"`
	VendorLabel string       `json:"vendor"`
	Stamps      int          `json:"stamps"`
	Threshold   int          `json:"threshold"`
}

// PurchaseService drives the customer side of a purchase: open a request,
// pick a vendor, mint and deliver the voucher.
type PurchaseService struct {
	Store     RecordStore
	Vendors   *VendorDirectory
	Sessions  *PurchaseSessions
	Issuer    *Issuer
	Threshold int
	Metrics   Metrics
}

// StartPurchase opens a purchase request for a registered customer and
// lists the vendors to choose from. Vendors other than the admin cannot buy.
func (s *PurchaseService) StartPurchase(ctx context.Context, customerID, displayName string) (PurchaseOptions, error) {
	ctx, span := otel.Tracer("services/PurchaseService").Start(ctx, "StartPurchase",
		trace.WithAttributes(attribute.String("customer.id", customerID)),
	)
	defer span.End()

	role := s.Vendors.ResolveRole(ctx, customerID)
	if role.IsVendor() && role != domain.RoleAdmin {
		return PurchaseOptions{}, ErrForbidden
	}

	_, c, err := findCustomer(ctx, s.Store, customerID)
	if err != nil {
		return PurchaseOptions{}, err
	}

	vendors := s.Vendors.ActiveVendors(ctx)
	if len(vendors) == 0 {
		return PurchaseOptions{}, ErrNoVendors
	}

	name := cleanName(displayName)
	if name == "" {
		name = c.Name
	}
	s.Sessions.Open(customerID, name)
	metricsOrNop(s.Metrics).LiveSessions(s.Sessions.Len())

	opts := PurchaseOptions{CustomerName: name, AnyVendor: ChoiceAll}
	for _, v := range vendors {
		opts.Vendors = append(opts.Vendors, VendorChoice{
			ID:      v.ID,
			Name:    v.Name,
			Tier:    v.Tier,
			Premium: v.Tier == domain.TierPremium,
		})
	}
	log.Info().Str("customer_id", customerID).Int("vendors", len(vendors)).Msg("purchase request opened")
	return opts, nil
}

// SelectVendor consumes the open request of customerID and issues a ticket
// to the chosen vendor, or to every vendor for ChoiceAll. A missing request
// yields ErrSessionExpired. The request is closed once a ticket was minted,
// whether or not delivery succeeded.
func (s *PurchaseService) SelectVendor(ctx context.Context, customerID, choice string) (PurchaseReceipt, error) {
	ctx, span := otel.Tracer("services/PurchaseService").Start(ctx, "SelectVendor",
		trace.WithAttributes(
			attribute.String("customer.id", customerID),
			attribute.String("choice", choice),
		),
	)
	defer span.End()

	name, ok := s.Sessions.Resolve(customerID)
	if !ok {
		metricsOrNop(s.Metrics).LiveSessions(s.Sessions.Len())
		return PurchaseReceipt{}, ErrSessionExpired
	}

	_, c, err := findCustomer(ctx, s.Store, customerID)
	if err != nil {
		return PurchaseReceipt{}, err
	}

	var (
		targets []string
		label   string
	)
	choice = strings.TrimSpace(choice)
	if strings.EqualFold(choice, ChoiceAll) {
		for _, v := range s.Vendors.ActiveVendors(ctx) {
			targets = append(targets, v.ID)
		}
		label = domain.AllVendorsLabel
	} else {
		v, found := s.Vendors.Lookup(ctx, choice)
		if !found {
			return PurchaseReceipt{}, ErrVendorNotFound
		}
		targets = []string{v.ID}
		label = v.Name
	}
	if len(targets) == 0 {
		return PurchaseReceipt{}, ErrNoVendors
	}

	h, err := s.Issuer.Issue(ctx, IssueRequest{
		CustomerID:    customerID,
		DisplayName:   name,
		Targets:       targets,
		Label:         label,
		StampSnapshot: c.Stamps,
	})
	if h.Code != "" {
		s.Sessions.Close(customerID)
		metricsOrNop(s.Metrics).LiveSessions(s.Sessions.Len())
	}

	receipt := PurchaseReceipt{Ticket: h, VendorLabel: label, Stamps: c.Stamps, Threshold: s.threshold()}
	if err != nil && !errors.Is(err, ErrDeliveryFailed) {
		return PurchaseReceipt{}, err
	}
	return receipt, err
}

func (s *PurchaseService) threshold() int {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return DefaultRewardThreshold
}
