// Package services – VendorDirectory
//
// VendorDirectory is the read-through cache of active vendors. A snapshot is
// served while younger than the TTL; an expired or missing snapshot triggers
// a rebuild (duplicate cleanup, full scan, first-active-wins dedup, admin
// synthesized last). Concurrent rebuilds are coalesced with singleflight.
// Local vendor mutations patch the snapshot synchronously.
//
// It also owns the vendor admin operations (add, deactivate, duplicate
// cleanup) and role resolution, since all three must keep the snapshot
// coherent.
package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

// DefaultVendorCacheTTL is the snapshot lifetime when none is configured.
const DefaultVendorCacheTTL = 300 * time.Second

// VendorDirectory caches the active vendor list.
type VendorDirectory struct {
	Store     RecordStore
	AdminID   string
	AdminName string
	TTL       time.Duration
	Now       func() time.Time
	Metrics   Metrics

	mu         sync.Mutex
	snapshot   []domain.Vendor
	capturedAt time.Time
	present    bool
	gen        uint64

	flight singleflight.Group
}

// NewVendorDirectory returns a directory with the default TTL.
func NewVendorDirectory(store RecordStore, adminID, adminName string) *VendorDirectory {
	return &VendorDirectory{
		Store:     store,
		AdminID:   adminID,
		AdminName: adminName,
		TTL:       DefaultVendorCacheTTL,
		Now:       time.Now,
	}
}

// ActiveVendors returns the active vendors in stored order with the admin
// last when it has no row of its own. A store failure yields an empty slice.
func (d *VendorDirectory) ActiveVendors(ctx context.Context) []domain.Vendor {
	ctx, span := otel.Tracer("services/VendorDirectory").Start(ctx, "ActiveVendors")
	defer span.End()

	m := metricsOrNop(d.Metrics)
	now := d.now()

	d.mu.Lock()
	if d.present && now.Sub(d.capturedAt) < d.ttl() {
		out := cloneVendors(d.snapshot)
		d.mu.Unlock()
		m.CacheLookup(true)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return out
	}
	d.mu.Unlock()
	m.CacheLookup(false)
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err, _ := d.flight.Do("rebuild", func() (interface{}, error) {
		return d.rebuild(context.WithoutCancel(ctx))
	})
	if err != nil {
		log.Error().Err(err).Msg("vendor directory rebuild failed")
		span.RecordError(err)
		return []domain.Vendor{}
	}
	return cloneVendors(v.([]domain.Vendor))
}

// rebuild reloads the snapshot from the store. A local mutation that lands
// while the rebuild is in flight wins over the rebuilt list.
func (d *VendorDirectory) rebuild(ctx context.Context) ([]domain.Vendor, error) {
	d.mu.Lock()
	gen := d.gen
	d.mu.Unlock()

	if _, err := d.CleanupDuplicates(ctx); err != nil {
		return nil, err
	}
	rows, err := d.Store.ScanAll(ctx, domain.SheetVendors)
	if err != nil {
		return nil, storeErr("scan vendors", err)
	}

	seen := make(map[string]struct{}, len(rows))
	vendors := make([]domain.Vendor, 0, len(rows)+1)
	for _, cells := range rows {
		v := repo.DecodeVendor(cells)
		if v.ID == "" || !v.Active {
			continue
		}
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}
		if v.ID == d.AdminID {
			v.Tier = domain.TierAdmin
		}
		vendors = append(vendors, v)
	}
	if _, ok := seen[d.AdminID]; !ok && d.AdminID != "" {
		vendors = append(vendors, d.adminEntry())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen && d.present {
		return cloneVendors(d.snapshot), nil
	}
	d.snapshot = vendors
	d.capturedAt = d.now()
	d.present = true
	metricsOrNop(d.Metrics).CacheRebuilt(len(vendors))
	return cloneVendors(vendors), nil
}

// CleanupDuplicates physically removes later active rows of an identity that
// already has an earlier active row. The admin identity is never removed.
// Rows are deleted in descending order so pending positions stay valid.
func (d *VendorDirectory) CleanupDuplicates(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("services/VendorDirectory").Start(ctx, "CleanupDuplicates")
	defer span.End()

	rows, err := d.Store.ScanAll(ctx, domain.SheetVendors)
	if err != nil {
		return 0, storeErr("scan vendors", err)
	}

	seen := make(map[string]struct{}, len(rows))
	var doomed []int
	for i, cells := range rows {
		v := repo.DecodeVendor(cells)
		if v.ID == "" || v.ID == d.AdminID || !v.Active {
			continue
		}
		if _, dup := seen[v.ID]; dup {
			doomed = append(doomed, i+1)
			continue
		}
		seen[v.ID] = struct{}{}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(doomed)))
	removed := 0
	for _, row := range doomed {
		if err := d.Store.DeleteRow(ctx, domain.SheetVendors, row); err != nil {
			span.RecordError(err)
			metricsOrNop(d.Metrics).DuplicatesRemoved(removed)
			return removed, storeErr("delete duplicate vendor", err)
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("duplicate vendor rows removed")
		metricsOrNop(d.Metrics).DuplicatesRemoved(removed)
	}
	span.SetAttributes(attribute.Int("vendors.removed", removed))
	return removed, nil
}

// AddVendor appends a vendor row and patches the snapshot.
func (d *VendorDirectory) AddVendor(ctx context.Context, id, name string, tier domain.Tier) (domain.Vendor, error) {
	ctx, span := otel.Tracer("services/VendorDirectory").Start(ctx, "AddVendor",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)
	defer span.End()

	if !validID(id) {
		return domain.Vendor{}, ErrInvalidID
	}
	name = vendorName(name)
	if name == "" {
		return domain.Vendor{}, ErrInvalidInput
	}
	if tier != domain.TierPremium {
		tier = domain.TierNormal
	}
	if id == d.AdminID {
		return domain.Vendor{}, ErrAlreadyExists
	}

	rows, err := d.Store.ScanAll(ctx, domain.SheetVendors)
	if err != nil {
		return domain.Vendor{}, storeErr("scan vendors", err)
	}
	for _, cells := range rows {
		if v := repo.DecodeVendor(cells); v.ID == id && v.Active {
			return domain.Vendor{}, ErrAlreadyExists
		}
	}

	v := domain.Vendor{ID: id, Name: name, AddedOn: today(d.now()), Active: true, Tier: tier}
	if err := d.Store.AppendRow(ctx, domain.SheetVendors, repo.EncodeVendor(v)); err != nil {
		return domain.Vendor{}, storeErr("append vendor", err)
	}
	d.Put(v)
	log.Info().Str("vendor_id", id).Str("tier", string(tier)).Msg("vendor added")
	return v, nil
}

// DeactivateVendor flips the active flag of every active row of id to NO
// and drops it from the snapshot.
func (d *VendorDirectory) DeactivateVendor(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/VendorDirectory").Start(ctx, "DeactivateVendor",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)
	defer span.End()

	if id == d.AdminID {
		return ErrAdminProtected
	}
	rows, err := d.Store.ScanAll(ctx, domain.SheetVendors)
	if err != nil {
		return storeErr("scan vendors", err)
	}
	found := false
	for i, cells := range rows {
		v := repo.DecodeVendor(cells)
		if v.ID != id || !v.Active {
			continue
		}
		if err := d.Store.UpdateCell(ctx, domain.SheetVendors, i+1, repo.VendorColActive, repo.ActiveNo); err != nil {
			return storeErr("deactivate vendor", err)
		}
		found = true
	}
	if !found {
		return ErrVendorNotFound
	}
	d.Remove(id)
	log.Info().Str("vendor_id", id).Msg("vendor deactivated")
	return nil
}

// Put inserts or replaces v in the snapshot and refreshes its capture time.
// Without a snapshot the next read rebuilds from the store.
func (d *VendorDirectory) Put(v domain.Vendor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if !d.present {
		return
	}
	next := make([]domain.Vendor, 0, len(d.snapshot)+1)
	var admin *domain.Vendor
	replaced := false
	for _, cur := range d.snapshot {
		switch {
		case cur.ID == v.ID:
			next = append(next, v)
			replaced = true
		case cur.ID == d.AdminID && cur.Name == d.adminEntry().Name:
			a := cur
			admin = &a
		default:
			next = append(next, cur)
		}
	}
	if !replaced {
		next = append(next, v)
	}
	if admin != nil {
		next = append(next, *admin)
	}
	d.snapshot = next
	d.capturedAt = d.now()
}

// Remove drops id from the snapshot and refreshes its capture time.
func (d *VendorDirectory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if !d.present {
		return
	}
	next := d.snapshot[:0:0]
	for _, cur := range d.snapshot {
		if cur.ID != id {
			next = append(next, cur)
		}
	}
	d.snapshot = next
	d.capturedAt = d.now()
}

// Invalidate drops the snapshot so the next read rebuilds.
func (d *VendorDirectory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.present = false
	d.snapshot = nil
}

// Lookup returns the active vendor with the given id.
func (d *VendorDirectory) Lookup(ctx context.Context, id string) (domain.Vendor, bool) {
	for _, v := range d.ActiveVendors(ctx) {
		if v.ID == id {
			return v, true
		}
	}
	return domain.Vendor{}, false
}

// LookupByName returns the first active vendor with the given stored name.
func (d *VendorDirectory) LookupByName(ctx context.Context, name string) (domain.Vendor, bool) {
	for _, v := range d.ActiveVendors(ctx) {
		if v.Name == name {
			return v, true
		}
	}
	return domain.Vendor{}, false
}

// ResolveRole maps a caller id to its role, consulting the directory once.
func (d *VendorDirectory) ResolveRole(ctx context.Context, id string) domain.Role {
	if id != "" && id == d.AdminID {
		return domain.RoleAdmin
	}
	v, ok := d.Lookup(ctx, id)
	if !ok {
		return domain.RoleCustomer
	}
	switch v.Tier {
	case domain.TierAdmin:
		return domain.RoleAdmin
	case domain.TierPremium:
		return domain.RolePremium
	default:
		return domain.RoleNormal
	}
}

// VendorSummary counts the vendors sheet for the admin listing.
type VendorSummary struct {
	Active   []domain.Vendor `json:"active"`
	Premium  int             `json:"premium"`
	Normal   int             `json:"normal"`
	Inactive int             `json:"inactive"`
}

// Summary lists active vendors and counts inactive rows.
func (d *VendorDirectory) Summary(ctx context.Context) (VendorSummary, error) {
	rows, err := d.Store.ScanAll(ctx, domain.SheetVendors)
	if err != nil {
		return VendorSummary{}, storeErr("scan vendors", err)
	}
	s := VendorSummary{Active: d.ActiveVendors(ctx)}
	for _, cells := range rows {
		if !repo.DecodeVendor(cells).Active {
			s.Inactive++
		}
	}
	for _, v := range s.Active {
		switch v.Tier {
		case domain.TierPremium:
			s.Premium++
		case domain.TierNormal:
			s.Normal++
		}
	}
	return s, nil
}

func (d *VendorDirectory) adminEntry() domain.Vendor {
	name := d.AdminName
	if name == "" {
		name = "Admin"
	}
	return domain.Vendor{ID: d.AdminID, Name: name + " (Admin)", Active: true, Tier: domain.TierAdmin}
}

func (d *VendorDirectory) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *VendorDirectory) ttl() time.Duration {
	if d.TTL > 0 {
		return d.TTL
	}
	return DefaultVendorCacheTTL
}

func cloneVendors(in []domain.Vendor) []domain.Vendor {
	out := make([]domain.Vendor, len(in))
	copy(out, in)
	return out
}
