package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

// DefaultHistoryLimit is how many purchases History returns by default.
const DefaultHistoryLimit = 10

// StampCard is a customer's progress toward the reward.
type StampCard struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Stamps     int    `json:"stamps"`
	Threshold  int    `json:"threshold"`
	Remaining  int    `json:"remaining"`
}

// PurchaseHistory is the latest purchases of one customer, newest first.
type PurchaseHistory struct {
	Entries        []domain.HistoryEntry `json:"entries"`
	TotalPurchases int                   `json:"total_purchases"`
	Remaining      int                   `json:"remaining"`
}

// CustomerService manages customer rows.
type CustomerService struct {
	Store     RecordStore
	Vendors   *VendorDirectory
	Threshold int
	Location  *time.Location
	Now       func() time.Time
	Rows      *RowGuard
}

// Register creates the row of a new customer with zero stamps. Vendors
// other than the admin cannot register as customers.
func (s *CustomerService) Register(ctx context.Context, id string, p Profile, fallbackName string) (domain.Customer, error) {
	ctx, span := otel.Tracer("services/CustomerService").Start(ctx, "Register",
		trace.WithAttributes(attribute.String("customer.id", id)),
	)
	defer span.End()

	if !validID(id) {
		return domain.Customer{}, ErrInvalidID
	}
	role := s.Vendors.ResolveRole(ctx, id)
	if role.IsVendor() && role != domain.RoleAdmin {
		return domain.Customer{}, ErrForbidden
	}

	name := p.FullName()
	if name == "" {
		name = cleanName(fallbackName)
	}
	if name == "" {
		name = domain.DefaultCustomerName
	}
	return s.create(ctx, domain.Customer{ID: id, Username: p.Handle(), Name: name})
}

// AddCustomer is the admin variant of Register: any numeric id, no role
// check, name given verbatim.
func (s *CustomerService) AddCustomer(ctx context.Context, id, name string) (domain.Customer, error) {
	ctx, span := otel.Tracer("services/CustomerService").Start(ctx, "AddCustomer",
		trace.WithAttributes(attribute.String("customer.id", id)),
	)
	defer span.End()

	if !validID(id) {
		return domain.Customer{}, ErrInvalidID
	}
	name = cleanName(name)
	if name == "" {
		return domain.Customer{}, ErrInvalidInput
	}
	return s.create(ctx, domain.Customer{ID: id, Name: name})
}

func (s *CustomerService) create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	_, _, err := findCustomer(ctx, s.Store, c.ID)
	switch {
	case err == nil:
		return domain.Customer{}, ErrAlreadyExists
	case !errors.Is(err, ErrCustomerNotFound):
		return domain.Customer{}, err
	}

	c.RegisteredOn = today(s.now())
	c.Stamps = 0
	if err := s.Store.AppendRow(ctx, domain.SheetCustomers, repo.EncodeCustomer(c)); err != nil {
		return domain.Customer{}, storeErr("append customer", err)
	}
	log.Info().Str("customer_id", c.ID).Msg("customer registered")
	return c, nil
}

// RemoveCustomer physically deletes the customer row. History is kept.
func (s *CustomerService) RemoveCustomer(ctx context.Context, id string) (domain.Customer, error) {
	ctx, span := otel.Tracer("services/CustomerService").Start(ctx, "RemoveCustomer",
		trace.WithAttributes(attribute.String("customer.id", id)),
	)
	defer span.End()

	if !validID(id) {
		return domain.Customer{}, ErrInvalidID
	}

	release := s.Rows.write()
	defer release()

	row, c, err := findCustomer(ctx, s.Store, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := s.Store.DeleteRow(ctx, domain.SheetCustomers, row); err != nil {
		return domain.Customer{}, storeErr("delete customer", err)
	}
	log.Info().Str("customer_id", id).Msg("customer removed")
	return c, nil
}

// Stamps returns the stamp card of id.
func (s *CustomerService) Stamps(ctx context.Context, id string) (StampCard, error) {
	ctx, span := otel.Tracer("services/CustomerService").Start(ctx, "Stamps",
		trace.WithAttributes(attribute.String("customer.id", id)),
	)
	defer span.End()

	_, c, err := findCustomer(ctx, s.Store, id)
	if err != nil {
		return StampCard{}, err
	}
	t := s.threshold()
	return StampCard{
		CustomerID: c.ID,
		Name:       c.Name,
		Stamps:     c.Stamps,
		Threshold:  t,
		Remaining:  max(t-c.Stamps, 0),
	}, nil
}

// History returns up to limit purchases of id, newest first. Remaining is
// derived from the purchase count, as the history is an audit trail and may
// disagree with the stamp cell after admin edits.
func (s *CustomerService) History(ctx context.Context, id string, limit int) (PurchaseHistory, error) {
	ctx, span := otel.Tracer("services/CustomerService").Start(ctx, "History",
		trace.WithAttributes(attribute.String("customer.id", id), attribute.Int("limit", limit)),
	)
	defer span.End()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.Store.ScanAll(ctx, domain.SheetHistory)
	if err != nil {
		return PurchaseHistory{}, storeErr("scan history", err)
	}

	var mine []domain.HistoryEntry
	for _, cells := range rows {
		h := repo.DecodeHistory(cells, s.Location)
		if h.CustomerID == id {
			mine = append(mine, h)
		}
	}

	// Rows are stored oldest first; stable sort keeps equal timestamps in
	// insertion order before reversing.
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].At.Before(mine[j].At) })
	out := make([]domain.HistoryEntry, 0, min(limit, len(mine)))
	for i := len(mine) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, mine[i])
	}

	t := s.threshold()
	return PurchaseHistory{
		Entries:        out,
		TotalPurchases: len(mine),
		Remaining:      t - len(mine)%t,
	}, nil
}

func (s *CustomerService) threshold() int {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return DefaultRewardThreshold
}

func (s *CustomerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
