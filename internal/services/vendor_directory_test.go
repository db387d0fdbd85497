package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

func vendorIDs(vs []domain.Vendor) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestActiveVendors_OrderDedupAndAdminLast(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow("1", "Ana", true, domain.TierNormal),
		vendorRow("2", "Luis", false, domain.TierNormal),
		vendorRow("3", "Eva", true, domain.TierPremium),
		vendorRow("1", "Ana_bis", true, domain.TierNormal),
	)
	f := newFixture(s)

	got := f.vendors.ActiveVendors(context.Background())
	if ids := vendorIDs(got); !equalIDs(ids, []string{"1", "3", testAdmin}) {
		t.Fatalf("ids = %v", ids)
	}
	if got[0].Name != "Ana" {
		t.Fatalf("first active row must win, got %q", got[0].Name)
	}
	admin := got[2]
	if admin.Tier != domain.TierAdmin || admin.Name != "Boss (Admin)" {
		t.Fatalf("synthesized admin: %+v", admin)
	}
	// The rebuild physically removed the later duplicate.
	if n := len(s.rows(domain.SheetVendors)); n != 3 {
		t.Fatalf("rows after rebuild = %d; want 3", n)
	}
}

func TestActiveVendors_AdminRowKeptInPlace(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow(testAdmin, "Jefe", true, domain.TierNormal),
		vendorRow("1", "Ana", true, domain.TierNormal),
	)
	f := newFixture(s)
	got := f.vendors.ActiveVendors(context.Background())
	if ids := vendorIDs(got); !equalIDs(ids, []string{testAdmin, "1"}) {
		t.Fatalf("ids = %v", ids)
	}
	if got[0].Tier != domain.TierAdmin {
		t.Fatalf("admin row must resolve to admin tier: %+v", got[0])
	}
}

func TestActiveVendors_FreshSnapshotSkipsStore(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("1", "Ana", true, domain.TierNormal))
	f := newFixture(s)
	ctx := context.Background()

	f.vendors.ActiveVendors(ctx)
	scans := s.count("scan", domain.SheetVendors)

	f.clock.Advance(DefaultVendorCacheTTL - 1)
	f.vendors.ActiveVendors(ctx)
	if got := s.count("scan", domain.SheetVendors); got != scans {
		t.Fatalf("fresh snapshot touched the store: %d scans, want %d", got, scans)
	}
	if f.metrics.hits != 1 || f.metrics.misses != 1 {
		t.Fatalf("hits=%d misses=%d", f.metrics.hits, f.metrics.misses)
	}
}

func TestActiveVendors_RebuildAfterTTLSeesOutOfBandChange(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("1", "Ana", true, domain.TierNormal))
	f := newFixture(s)
	ctx := context.Background()

	f.vendors.ActiveVendors(ctx)
	s.seed(domain.SheetVendors, vendorRow("2", "Luis", true, domain.TierNormal))

	if ids := vendorIDs(f.vendors.ActiveVendors(ctx)); len(ids) != 2 {
		t.Fatalf("stale snapshot expected before TTL, got %v", ids)
	}
	f.clock.Advance(DefaultVendorCacheTTL)
	if ids := vendorIDs(f.vendors.ActiveVendors(ctx)); !equalIDs(ids, []string{"1", "2", testAdmin}) {
		t.Fatalf("after TTL ids = %v", ids)
	}
}

func TestActiveVendors_StoreErrorYieldsEmpty(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("1", "Ana", true, domain.TierNormal))
	s.failOn = func(op, sheet string) error {
		if op == "scan" {
			return errBoom
		}
		return nil
	}
	f := newFixture(s)
	got := f.vendors.ActiveVendors(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}

	// The failure is not cached: the next read retries.
	s.failOn = nil
	if ids := vendorIDs(f.vendors.ActiveVendors(context.Background())); len(ids) != 2 {
		t.Fatalf("retry after failure: %v", ids)
	}
}

func TestActiveVendors_ConcurrentRebuildsCoalesce(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("1", "Ana", true, domain.TierNormal))
	f := newFixture(s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n := len(f.vendors.ActiveVendors(context.Background())); n != 2 {
				t.Errorf("got %d vendors", n)
			}
		}()
	}
	wg.Wait()
	// Every rebuild scans twice (cleanup + listing); far fewer than 20
	// rebuilds must have happened.
	if scans := s.count("scan", domain.SheetVendors); scans >= 40 {
		t.Fatalf("rebuilds not coalesced: %d scans", scans)
	}
}

func TestCleanupDuplicates_DescendingAndIdempotent(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow("1", "Ana", true, domain.TierNormal),
		vendorRow("2", "Luis", true, domain.TierNormal),
		vendorRow("1", "Ana2", true, domain.TierNormal),
		vendorRow("2", "Luis2", false, domain.TierNormal),
		vendorRow("1", "Ana3", true, domain.TierNormal),
		vendorRow("2", "Luis3", true, domain.TierNormal),
	)
	f := newFixture(s)
	ctx := context.Background()

	n, err := f.vendors.CleanupDuplicates(ctx)
	if err != nil || n != 3 {
		t.Fatalf("first pass removed %d (err %v); want 3", n, err)
	}
	var names []string
	for _, r := range s.rows(domain.SheetVendors) {
		names = append(names, r[1])
	}
	if !equalIDs(names, []string{"Ana", "Luis", "Luis2"}) {
		t.Fatalf("remaining rows = %v", names)
	}

	n, err = f.vendors.CleanupDuplicates(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second pass removed %d (err %v); want 0", n, err)
	}
}

func TestCleanupDuplicates_AdminExempt(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow(testAdmin, "Boss", true, domain.TierAdmin),
		vendorRow(testAdmin, "Boss", true, domain.TierAdmin),
	)
	f := newFixture(s)
	n, err := f.vendors.CleanupDuplicates(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("removed %d (err %v); admin rows must stay", n, err)
	}
	if len(s.rows(domain.SheetVendors)) != 2 {
		t.Fatal("admin row deleted")
	}
	got := f.vendors.ActiveVendors(context.Background())
	if len(got) != 1 || got[0].ID != testAdmin {
		t.Fatalf("admin must appear once: %+v", got)
	}
}

func TestCleanupDuplicates_ReactivatedVendorSurvives(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow("1", "Ana", false, domain.TierNormal),
		vendorRow("1", "Ana", true, domain.TierNormal),
	)
	f := newFixture(s)
	if n, _ := f.vendors.CleanupDuplicates(context.Background()); n != 0 {
		t.Fatalf("removed %d; the only active row must stay", n)
	}
	if _, ok := f.vendors.Lookup(context.Background(), "1"); !ok {
		t.Fatal("re-added vendor not active")
	}
}

func TestAddVendor_VisibleImmediatelyWithoutRebuild(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("1", "Ana", true, domain.TierNormal))
	f := newFixture(s)
	ctx := context.Background()
	f.vendors.ActiveVendors(ctx)

	v, err := f.vendors.AddVendor(ctx, "2", "Luis  Perez", domain.TierPremium)
	if err != nil {
		t.Fatalf("AddVendor: %v", err)
	}
	if v.Name != "Luis_Perez" || v.Tier != domain.TierPremium || !v.Active || v.AddedOn != "2024-05-01" {
		t.Fatalf("unexpected vendor: %+v", v)
	}
	scans := s.count("scan", domain.SheetVendors)

	got := f.vendors.ActiveVendors(ctx)
	if ids := vendorIDs(got); !equalIDs(ids, []string{"1", "2", testAdmin}) {
		t.Fatalf("ids = %v (admin stays last)", ids)
	}
	if s.count("scan", domain.SheetVendors) != scans {
		t.Fatal("read after local add should not rebuild")
	}
	if role := f.vendors.ResolveRole(ctx, "2"); role != domain.RolePremium {
		t.Fatalf("role = %s", role)
	}
}

func TestAddVendor_Validation(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("1", "Ana", true, domain.TierNormal))
	f := newFixture(s)
	ctx := context.Background()

	cases := []struct {
		id, name string
		want     error
	}{
		{"abc", "X", ErrInvalidID},
		{"5", "   ", ErrInvalidInput},
		{"1", "Ana", ErrAlreadyExists},
		{testAdmin, "Boss", ErrAlreadyExists},
	}
	for _, tc := range cases {
		if _, err := f.vendors.AddVendor(ctx, tc.id, tc.name, domain.TierNormal); !errors.Is(err, tc.want) {
			t.Errorf("AddVendor(%q,%q) = %v; want %v", tc.id, tc.name, err, tc.want)
		}
	}
}

func TestAddVendor_StoreFailureLeavesCacheUntouched(t *testing.T) {
	s := newMemStore()
	f := newFixture(s)
	ctx := context.Background()
	f.vendors.ActiveVendors(ctx)

	s.failOn = func(op, _ string) error {
		if op == "append" {
			return errBoom
		}
		return nil
	}
	if _, err := f.vendors.AddVendor(ctx, "7", "Eva", domain.TierNormal); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
	if _, ok := f.vendors.Lookup(ctx, "7"); ok {
		t.Fatal("failed add leaked into the snapshot")
	}
}

func TestDeactivateVendor(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow("1", "Ana", true, domain.TierNormal),
		vendorRow("2", "Luis", true, domain.TierNormal),
	)
	f := newFixture(s)
	ctx := context.Background()
	f.vendors.ActiveVendors(ctx)

	if err := f.vendors.DeactivateVendor(ctx, "1"); err != nil {
		t.Fatalf("DeactivateVendor: %v", err)
	}
	if ids := vendorIDs(f.vendors.ActiveVendors(ctx)); !equalIDs(ids, []string{"2", testAdmin}) {
		t.Fatalf("ids = %v", ids)
	}
	if got := s.rows(domain.SheetVendors)[0][repo.VendorColActive-1]; got != repo.ActiveNo {
		t.Fatalf("active cell = %q", got)
	}
	if err := f.vendors.DeactivateVendor(ctx, "1"); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("second deactivate: %v", err)
	}
	if err := f.vendors.DeactivateVendor(ctx, testAdmin); !errors.Is(err, ErrAdminProtected) {
		t.Fatalf("admin deactivate: %v", err)
	}
}

func TestResolveRole(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow("1", "Ana", true, domain.TierNormal),
		vendorRow("2", "Eva", true, domain.TierPremium),
		vendorRow("3", "Old", false, domain.TierPremium),
	)
	f := newFixture(s)
	ctx := context.Background()
	cases := map[string]domain.Role{
		testAdmin: domain.RoleAdmin,
		"1":       domain.RoleNormal,
		"2":       domain.RolePremium,
		"3":       domain.RoleCustomer,
		"42":      domain.RoleCustomer,
	}
	for id, want := range cases {
		if got := f.vendors.ResolveRole(ctx, id); got != want {
			t.Errorf("ResolveRole(%s) = %s; want %s", id, got, want)
		}
	}
}

func TestInvalidate_ForcesRebuild(t *testing.T) {
	s := newMemStore()
	f := newFixture(s)
	ctx := context.Background()
	f.vendors.ActiveVendors(ctx)
	s.seed(domain.SheetVendors, vendorRow("1", "Ana", true, domain.TierNormal))

	f.vendors.Invalidate()
	if ids := vendorIDs(f.vendors.ActiveVendors(ctx)); !equalIDs(ids, []string{"1", testAdmin}) {
		t.Fatalf("ids = %v", ids)
	}
}

func TestSummary(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors,
		vendorRow("1", "Ana", true, domain.TierNormal),
		vendorRow("2", "Eva", true, domain.TierPremium),
		vendorRow("3", "Old", false, domain.TierNormal),
	)
	f := newFixture(s)
	sum, err := f.vendors.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum.Active) != 3 || sum.Premium != 1 || sum.Normal != 1 || sum.Inactive != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
