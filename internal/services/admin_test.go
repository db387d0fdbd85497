package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
)

func TestReset_ClearsEphemeralStateOnly(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("7", "Ana", true, domain.TierNormal))
	s.seed(domain.SheetCustomers, customerRow("42", 3, ""))
	f := newFixture(s)
	ctx := context.Background()

	f.issue(t, "42", "Ana", "7")
	f.issue(t, "43", "Ana", "7")
	f.sessions.Open("42", "C")
	f.admin.Pending.Arm(testAdmin, InputAddCustomer)
	f.vendors.ActiveVendors(ctx)

	writes := s.count("append", domain.SheetCustomers) + s.count("update", domain.SheetCustomers)
	r := f.admin.Reset(ctx)
	if r != (ResetReport{TicketsCleared: 2, SessionsCleared: 1, PendingAdminInputsCleared: 1}) {
		t.Fatalf("report = %+v", r)
	}
	if got := s.count("append", domain.SheetCustomers) + s.count("update", domain.SheetCustomers); got != writes {
		t.Fatal("reset wrote to the store")
	}
	if again := f.admin.Reset(ctx); again != (ResetReport{}) {
		t.Fatalf("second reset = %+v", again)
	}

	// The snapshot was dropped: the next read rebuilds.
	scans := s.count("scan", domain.SheetVendors)
	f.vendors.ActiveVendors(ctx)
	if s.count("scan", domain.SheetVendors) == scans {
		t.Fatal("vendor snapshot survived reset")
	}
}

func TestPendingInputs(t *testing.T) {
	p := NewPendingInputs()
	p.Arm("1", InputAddVendorNormal)
	p.Arm("1", InputRemoveCustomer)
	if k, ok := p.Take("1"); !ok || k != InputRemoveCustomer {
		t.Fatalf("Take = %v, %v", k, ok)
	}
	if _, ok := p.Take("1"); ok {
		t.Fatal("input consumed twice")
	}
	if InputKind("nope").Valid() {
		t.Fatal("unknown kind reported valid")
	}
}

func TestSubmitPendingInput_Flows(t *testing.T) {
	s := newMemStore()
	f := newFixture(s)
	ctx := context.Background()

	if _, err := f.admin.SubmitPendingInput(ctx, testAdmin, "1 x"); !errors.Is(err, ErrNoPendingInput) {
		t.Fatalf("unarmed: %v", err)
	}
	if err := f.admin.Arm(testAdmin, "bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bogus kind: %v", err)
	}

	_ = f.admin.Arm(testAdmin, InputAddVendorPremium)
	res, err := f.admin.SubmitPendingInput(ctx, testAdmin, "55 Maria Jose")
	if err != nil || res.Vendor == nil || res.Vendor.Name != "Maria_Jose" || res.Vendor.Tier != domain.TierPremium {
		t.Fatalf("add vendor: res=%+v err=%v", res, err)
	}
	if f.vendors.ResolveRole(ctx, "55") != domain.RolePremium {
		t.Fatal("new vendor not visible")
	}

	_ = f.admin.Arm(testAdmin, InputAddCustomer)
	res, err = f.admin.SubmitPendingInput(ctx, testAdmin, "42 Camila Ruiz")
	if err != nil || res.Customer == nil || res.Customer.Name != "Camila Ruiz" || res.Customer.Stamps != 0 {
		t.Fatalf("add customer: res=%+v err=%v", res, err)
	}

	_ = f.admin.Arm(testAdmin, InputAddCustomer)
	if _, err := f.admin.SubmitPendingInput(ctx, testAdmin, "42"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing name: %v", err)
	}
	if f.admin.Pending.Len() != 0 {
		t.Fatal("rejected text must still consume the armed input")
	}

	_ = f.admin.Arm(testAdmin, InputRemoveCustomer)
	res, err = f.admin.SubmitPendingInput(ctx, testAdmin, " 42 ")
	if err != nil || res.Customer == nil || res.Customer.ID != "42" {
		t.Fatalf("remove customer: res=%+v err=%v", res, err)
	}
	if len(s.rows(domain.SheetCustomers)) != 0 {
		t.Fatal("customer row not deleted")
	}
}

func TestCustomerService_RegisterAndAdd(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetVendors, vendorRow("7", "Ana", true, domain.TierNormal))
	f := newFixture(s)
	ctx := context.Background()

	c, err := f.customers.Register(ctx, "42", Profile{Username: "@cami"}, "Camila")
	if err != nil || c.Name != "Camila" || c.Username != "@cami" || c.RegisteredOn != "2024-05-01" {
		t.Fatalf("Register: c=%+v err=%v", c, err)
	}
	if _, err := f.customers.Register(ctx, "42", Profile{}, "x"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := f.customers.Register(ctx, "7", Profile{}, "Ana"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("vendor register: %v", err)
	}
	if _, err := f.customers.Register(ctx, testAdmin, Profile{}, ""); err != nil {
		t.Fatalf("admin register: %v", err)
	}
	if _, err := f.customers.AddCustomer(ctx, "4a", "X"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("bad id: %v", err)
	}
	if _, err := f.customers.RemoveCustomer(ctx, "77"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestCustomerService_StampsAndHistory(t *testing.T) {
	s := newMemStore()
	s.seed(domain.SheetCustomers, customerRow("42", 3, "Ana"))
	f := newFixture(s)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		f.clock.Advance(time.Minute)
		if _, err := f.redeemer.Redeem(ctx, "42", Profile{}, f.issue(t, "42", "Ana", "7")); err != nil {
			t.Fatalf("redeem %d: %v", i, err)
		}
	}
	s.seed(domain.SheetHistory, []string{"99", "2024-05-01 12:30:00", "Eva", "1", domain.CategoryPurchase})

	card, err := f.customers.Stamps(ctx, "42")
	// 3 + 12 = 15 with one reset at 10: 5.
	if err != nil || card.Stamps != 5 || card.Remaining != 5 || card.Threshold != 10 {
		t.Fatalf("card=%+v err=%v", card, err)
	}

	h, err := f.customers.History(ctx, "42", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if h.TotalPurchases != 12 || len(h.Entries) != DefaultHistoryLimit || h.Remaining != 8 {
		t.Fatalf("history = %+v", h)
	}
	if !h.Entries[0].At.After(h.Entries[1].At) {
		t.Fatal("history must be newest first")
	}

	if _, err := f.customers.Stamps(ctx, "1"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("unknown customer: %v", err)
	}
}
