package services

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

// DefaultSaleValue is the nominal price of one stamped purchase.
const DefaultSaleValue = 12

// Report sizes.
const (
	salesListLimit = 10
	rankingLimit   = 10
	nearRewardGap  = 3
)

// SalesReport lists the customers attributed to a vendor.
type SalesReport struct {
	Vendor         string            `json:"vendor"`
	All            bool              `json:"all"`
	Customers      []domain.Customer `json:"customers"`
	TotalCustomers int               `json:"total_customers"`
	NearReward     int               `json:"near_reward"`
	StampsHeld     int               `json:"stamps_held"`
	Revenue        int               `json:"revenue,omitempty"`
}

// VendorRank is one row of the sales ranking.
type VendorRank struct {
	Vendor          string  `json:"vendor"`
	Sales           int     `json:"sales"`
	UniqueCustomers int     `json:"unique_customers"`
	StampsHeld      int     `json:"stamps_held"`
	SalesPerClient  float64 `json:"sales_per_customer"`
	Revenue         int     `json:"revenue"`
	LastSale        string  `json:"last_sale,omitempty"`
}

// Ranking orders vendors by recorded sales.
type Ranking struct {
	Top          []VendorRank `json:"top"`
	TotalSales   int          `json:"total_sales"`
	Vendors      int          `json:"vendors"`
	AverageSales float64      `json:"average_sales"`
	TotalRevenue int          `json:"total_revenue"`
}

// Stats is the admin dashboard.
type Stats struct {
	Customers         int     `json:"customers"`
	NewToday          int     `json:"new_today"`
	WithStamps        int     `json:"with_stamps"`
	NearReward        int     `json:"near_reward"`
	ActivityRate      float64 `json:"activity_rate"`
	TotalStamps       int     `json:"total_stamps"`
	TotalSales        int     `json:"total_sales"`
	SalesToday        int     `json:"sales_today"`
	EstimatedRevenue  int     `json:"estimated_revenue"`
	VendorRows        int     `json:"vendor_rows"`
	ActiveVendors     int     `json:"active_vendors"`
	InactiveVendors   int     `json:"inactive_vendors"`
	NormalVendors     int     `json:"normal_vendors"`
	PremiumVendors    int     `json:"premium_vendors"`
	Ranking           Ranking `json:"ranking"`
	GeneratedAt       string  `json:"generated_at"`
	LiveTickets       int     `json:"live_tickets"`
	OpenPurchaseFlows int     `json:"open_purchase_flows"`
}

// ReportService builds read-only reports from full scans.
type ReportService struct {
	Store     RecordStore
	Vendors   *VendorDirectory
	Tickets   *TicketStore
	Sessions  *PurchaseSessions
	Threshold int
	SaleValue int
	Location  *time.Location
	Now       func() time.Time
}

// VendorSales lists the customers whose last purchase went through
// vendorID, newest rows first. The admin sees every customer and the
// estimated revenue.
func (s *ReportService) VendorSales(ctx context.Context, vendorID string) (SalesReport, error) {
	ctx, span := otel.Tracer("services/ReportService").Start(ctx, "VendorSales",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)
	defer span.End()

	role := s.Vendors.ResolveRole(ctx, vendorID)
	if !role.IsVendor() {
		return SalesReport{}, ErrForbidden
	}
	rep := SalesReport{All: role == domain.RoleAdmin}
	if v, ok := s.Vendors.Lookup(ctx, vendorID); ok {
		rep.Vendor = v.Name
	}

	rows, err := s.Store.ScanAll(ctx, domain.SheetCustomers)
	if err != nil {
		return SalesReport{}, storeErr("scan customers", err)
	}
	var mine []domain.Customer
	for _, cells := range rows {
		c := repo.DecodeCustomer(cells)
		if c.ID == "" {
			continue
		}
		if rep.All || c.LastVendor == rep.Vendor {
			mine = append(mine, c)
		}
	}

	near := s.threshold() - nearRewardGap
	for _, c := range mine {
		rep.StampsHeld += c.Stamps
		if c.Stamps >= near {
			rep.NearReward++
		}
	}
	rep.TotalCustomers = len(mine)
	for i := len(mine) - 1; i >= 0 && len(rep.Customers) < salesListLimit; i-- {
		rep.Customers = append(rep.Customers, mine[i])
	}
	if rep.All {
		rep.Revenue = rep.StampsHeld * s.saleValue()
	}
	return rep, nil
}

// Ranking aggregates the purchase history per vendor label.
func (s *ReportService) Ranking(ctx context.Context) (Ranking, error) {
	ctx, span := otel.Tracer("services/ReportService").Start(ctx, "Ranking")
	defer span.End()

	var customers, history [][]string
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = s.Store.ScanAll(gCtx, domain.SheetCustomers)
		return storeErr("scan customers", err)
	})
	g.Go(func() (err error) {
		history, err = s.Store.ScanAll(gCtx, domain.SheetHistory)
		return storeErr("scan history", err)
	})
	if err := g.Wait(); err != nil {
		return Ranking{}, err
	}
	return s.rank(customers, history), nil
}

// Stats builds the admin dashboard from one scan of each sheet.
func (s *ReportService) Stats(ctx context.Context) (Stats, error) {
	ctx, span := otel.Tracer("services/ReportService").Start(ctx, "Stats")
	defer span.End()

	var customers, vendors, history [][]string
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = s.Store.ScanAll(gCtx, domain.SheetCustomers)
		return storeErr("scan customers", err)
	})
	g.Go(func() (err error) {
		vendors, err = s.Store.ScanAll(gCtx, domain.SheetVendors)
		return storeErr("scan vendors", err)
	})
	g.Go(func() (err error) {
		history, err = s.Store.ScanAll(gCtx, domain.SheetHistory)
		return storeErr("scan history", err)
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	now := s.now()
	if s.Location != nil {
		now = now.In(s.Location)
	}
	day := today(now)
	near := s.threshold() - nearRewardGap

	var st Stats
	for _, cells := range customers {
		c := repo.DecodeCustomer(cells)
		if c.ID == "" {
			continue
		}
		st.Customers++
		st.TotalStamps += c.Stamps
		if c.Stamps > 0 {
			st.WithStamps++
		}
		if c.Stamps >= near && c.Stamps < s.threshold() {
			st.NearReward++
		}
		if c.RegisteredOn == day {
			st.NewToday++
		}
	}
	if st.Customers > 0 {
		st.ActivityRate = float64(st.WithStamps) / float64(st.Customers) * 100
	}

	for _, cells := range vendors {
		v := repo.DecodeVendor(cells)
		if v.ID == "" {
			continue
		}
		st.VendorRows++
		if !v.Active {
			st.InactiveVendors++
			continue
		}
		st.ActiveVendors++
		if v.Tier == domain.TierPremium {
			st.PremiumVendors++
		} else {
			st.NormalVendors++
		}
	}

	for _, cells := range history {
		h := repo.DecodeHistory(cells, s.Location)
		if h.CustomerID == "" {
			continue
		}
		st.TotalSales++
		if !h.At.IsZero() && h.At.Format(domain.DateLayout) == day {
			st.SalesToday++
		}
	}
	st.EstimatedRevenue = st.TotalSales * s.saleValue()
	st.Ranking = s.rank(customers, history)
	st.GeneratedAt = now.Format(domain.TimestampLayout)
	if s.Tickets != nil {
		st.LiveTickets = s.Tickets.Len()
	}
	if s.Sessions != nil {
		st.OpenPurchaseFlows = s.Sessions.Len()
	}
	return st, nil
}

func (s *ReportService) rank(customers, history [][]string) Ranking {
	type agg struct {
		rank    VendorRank
		clients map[string]struct{}
	}
	byLabel := make(map[string]*agg)
	for _, cells := range history {
		h := repo.DecodeHistory(cells, s.Location)
		if h.VendorLabel == "" {
			continue
		}
		a, ok := byLabel[h.VendorLabel]
		if !ok {
			a = &agg{rank: VendorRank{Vendor: h.VendorLabel}, clients: make(map[string]struct{})}
			byLabel[h.VendorLabel] = a
		}
		a.rank.Sales++
		if h.CustomerID != "" {
			a.clients[h.CustomerID] = struct{}{}
		}
		if !h.At.IsZero() {
			a.rank.LastSale = h.At.Format(domain.TimestampLayout)
		}
	}
	for _, cells := range customers {
		c := repo.DecodeCustomer(cells)
		if a, ok := byLabel[c.LastVendor]; ok {
			a.rank.StampsHeld += c.Stamps
		}
	}

	price := s.saleValue()
	var out Ranking
	all := make([]VendorRank, 0, len(byLabel))
	for _, a := range byLabel {
		r := a.rank
		r.UniqueCustomers = len(a.clients)
		if r.UniqueCustomers > 0 {
			r.SalesPerClient = float64(r.Sales) / float64(r.UniqueCustomers)
		}
		r.Revenue = r.Sales * price
		all = append(all, r)
		out.TotalSales += r.Sales
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Sales != all[j].Sales {
			return all[i].Sales > all[j].Sales
		}
		return all[i].Vendor < all[j].Vendor
	})
	if len(all) > rankingLimit {
		all = all[:rankingLimit]
	}
	out.Top = all
	out.Vendors = len(byLabel)
	if out.Vendors > 0 {
		out.AverageSales = float64(out.TotalSales) / float64(out.Vendors)
	}
	out.TotalRevenue = out.TotalSales * price
	return out
}

func (s *ReportService) threshold() int {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return DefaultRewardThreshold
}

func (s *ReportService) saleValue() int {
	if s.SaleValue > 0 {
		return s.SaleValue
	}
	return DefaultSaleValue
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
