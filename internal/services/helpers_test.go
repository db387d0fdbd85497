package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/notify"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

// ---------- test helpers ----------

var errBoom = errors.New("boom")

// memStore is an in-memory RecordStore. failOn, when set, is consulted
// before every call and may return an error to inject a failure.
type memStore struct {
	mu     sync.Mutex
	sheets map[string][][]string
	calls  map[string]int
	failOn func(op, sheet string) error
}

func newMemStore() *memStore {
	return &memStore{sheets: make(map[string][][]string), calls: make(map[string]int)}
}

func (m *memStore) check(op, sheet string) error {
	m.calls[op+":"+sheet]++
	if m.failOn != nil {
		return m.failOn(op, sheet)
	}
	return nil
}

func (m *memStore) seed(sheet string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.sheets[sheet] = append(m.sheets[sheet], append([]string(nil), r...))
	}
}

func (m *memStore) rows(sheet string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.sheets[sheet]))
	for i, r := range m.sheets[sheet] {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (m *memStore) count(op, sheet string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op+":"+sheet]
}

func (m *memStore) FindRow(_ context.Context, sheet, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("find", sheet); err != nil {
		return 0, err
	}
	for i, r := range m.sheets[sheet] {
		if len(r) > 0 && r[0] == key {
			return i + 1, nil
		}
	}
	return 0, repo.ErrNotFound
}

func (m *memStore) ReadRow(_ context.Context, sheet string, row int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("read", sheet); err != nil {
		return nil, err
	}
	rows := m.sheets[sheet]
	if row < 1 || row > len(rows) {
		return nil, repo.ErrNotFound
	}
	return append([]string(nil), rows[row-1]...), nil
}

func (m *memStore) AppendRow(_ context.Context, sheet string, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("append", sheet); err != nil {
		return err
	}
	m.sheets[sheet] = append(m.sheets[sheet], append([]string(nil), cells...))
	return nil
}

func (m *memStore) UpdateCell(_ context.Context, sheet string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("update", sheet); err != nil {
		return err
	}
	rows := m.sheets[sheet]
	if row < 1 || row > len(rows) {
		return repo.ErrNotFound
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = value
	return nil
}

func (m *memStore) ScanAll(_ context.Context, sheet string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("scan", sheet); err != nil {
		return nil, err
	}
	out := make([][]string, len(m.sheets[sheet]))
	for i, r := range m.sheets[sheet] {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *memStore) DeleteRow(_ context.Context, sheet string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("delete", sheet); err != nil {
		return err
	}
	rows := m.sheets[sheet]
	if row < 1 || row > len(rows) {
		return repo.ErrNotFound
	}
	m.sheets[sheet] = append(rows[:row-1:row-1], rows[row:]...)
	return nil
}

// casStore adds a conditional update to memStore. beforeSwap runs inside
// the first swap attempts to simulate an external edit.
type casStore struct {
	*memStore
	beforeSwap func(m *memStore)
	swaps      int
}

func (c *casStore) CompareAndSwapCell(_ context.Context, sheet string, row, col int, expected, value string) (bool, error) {
	if c.beforeSwap != nil {
		c.beforeSwap(c.memStore)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.swaps++
	if err := c.check("cas", sheet); err != nil {
		return false, err
	}
	rows := c.sheets[sheet]
	if row < 1 || row > len(rows) {
		return false, repo.ErrNotFound
	}
	cur := ""
	if col <= len(rows[row-1]) {
		cur = rows[row-1][col-1]
	}
	if cur != expected {
		return false, nil
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = value
	return true, nil
}

// fakeNotifier records deliveries and fails for targets listed in fail.
type fakeNotifier struct {
	mu   sync.Mutex
	fail map[string]bool
	sent map[string][]notify.Payload
}

func newFakeNotifier(failing ...string) *fakeNotifier {
	f := &fakeNotifier{fail: map[string]bool{}, sent: map[string][]notify.Payload{}}
	for _, id := range failing {
		f.fail[id] = true
	}
	return f
}

func (f *fakeNotifier) Deliver(_ context.Context, target string, p notify.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[target] {
		return fmt.Errorf("deliver %s: %w", target, errBoom)
	}
	f.sent[target] = append(f.sent[target], p)
	return nil
}

func (f *fakeNotifier) count(target string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[target])
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingMetrics records the events the services report.
type countingMetrics struct {
	mu          sync.Mutex
	hits        int
	misses      int
	rebuilds    int
	removed     int
	issued      int
	outcomes    map[string]int
	rewards     int
	deliveredOK int
	deliveryErr int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{outcomes: map[string]int{}}
}

func (m *countingMetrics) CacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}
func (m *countingMetrics) CacheRebuilt(int) { m.mu.Lock(); m.rebuilds++; m.mu.Unlock() }
func (m *countingMetrics) DuplicatesRemoved(n int) {
	m.mu.Lock()
	m.removed += n
	m.mu.Unlock()
}
func (m *countingMetrics) TicketIssued(int) { m.mu.Lock(); m.issued++; m.mu.Unlock() }
func (m *countingMetrics) DeliveryResult(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.deliveredOK++
	} else {
		m.deliveryErr++
	}
}
func (m *countingMetrics) LiveTickets(int)  {}
func (m *countingMetrics) LiveSessions(int) {}
func (m *countingMetrics) Redemption(outcome string) {
	m.mu.Lock()
	m.outcomes[outcome]++
	m.mu.Unlock()
}
func (m *countingMetrics) RewardGranted() { m.mu.Lock(); m.rewards++; m.mu.Unlock() }

// newSheetStore opens an isolated in-memory SQLite record store.
func newSheetStore(t *testing.T) *repo.SheetStore {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.SheetRow{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return repo.NewSheetStore(db)
}

// fixture wires every service over one store.
type fixture struct {
	store     RecordStore
	clock     *clock
	notifier  *fakeNotifier
	metrics   *countingMetrics
	vendors   *VendorDirectory
	sessions  *PurchaseSessions
	tickets   *TicketStore
	issuer    *Issuer
	redeemer  *Redeemer
	purchases *PurchaseService
	customers *CustomerService
	admin     *AdminService
	reports   *ReportService
}

const testAdmin = "900"

func newFixture(store RecordStore) *fixture {
	f := &fixture{
		store:    store,
		clock:    newClock(),
		notifier: newFakeNotifier(),
		metrics:  newCountingMetrics(),
	}
	rows := &RowGuard{}
	f.vendors = &VendorDirectory{
		Store: store, AdminID: testAdmin, AdminName: "Boss",
		TTL: DefaultVendorCacheTTL, Now: f.clock.Now, Metrics: f.metrics,
	}
	f.sessions = NewPurchaseSessions(10 * time.Minute)
	f.sessions.Now = f.clock.Now
	f.tickets = NewTicketStore(DefaultTicketTTL)
	f.issuer = &Issuer{
		Tickets: f.tickets, Notifier: f.notifier, DeepLinkBase: "https://t.me/bot?start=",
		Threshold: 10, SaleValue: 12, Now: f.clock.Now, Metrics: f.metrics,
		Render: func(link string) ([]byte, error) { return []byte("png:" + link), nil },
	}
	f.redeemer = &Redeemer{
		Store: store, Tickets: f.tickets, Vendors: f.vendors, Notifier: f.notifier,
		Threshold: 10, SaleValue: 12, Now: f.clock.Now, Metrics: f.metrics, Rows: rows,
	}
	f.purchases = &PurchaseService{
		Store: store, Vendors: f.vendors, Sessions: f.sessions, Issuer: f.issuer, Threshold: 10,
	}
	f.customers = &CustomerService{
		Store: store, Vendors: f.vendors, Threshold: 10, Location: time.UTC, Now: f.clock.Now, Rows: rows,
	}
	f.admin = &AdminService{
		Vendors: f.vendors, Tickets: f.tickets, Sessions: f.sessions,
		Pending: NewPendingInputs(), Customers: f.customers,
	}
	f.reports = &ReportService{
		Store: store, Vendors: f.vendors, Tickets: f.tickets, Sessions: f.sessions,
		Threshold: 10, SaleValue: 12, Location: time.UTC, Now: f.clock.Now,
	}
	return f
}

// issue mints a ticket for customer bound to label, created at the
// fixture's current time.
func (f *fixture) issue(t *testing.T, customer, label string, targets ...string) string {
	t.Helper()
	h, err := f.issuer.Issue(context.Background(), IssueRequest{
		CustomerID: customer, DisplayName: "Cliente " + customer,
		Targets: targets, Label: label,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return h.Code
}

func customerRow(id string, stamps int, last string) []string {
	return repo.EncodeCustomer(domain.Customer{ID: id, Name: "C" + id, RegisteredOn: "2024-01-01", Stamps: stamps, LastVendor: last})
}

func vendorRow(id, name string, active bool, tier domain.Tier) []string {
	return repo.EncodeVendor(domain.Vendor{ID: id, Name: name, AddedOn: "2024-01-01", Active: active, Tier: tier})
}

func stampsOf(t *testing.T, store RecordStore, id string) int {
	t.Helper()
	_, c, err := findCustomer(context.Background(), store, id)
	if err != nil {
		t.Fatalf("find customer %s: %v", id, err)
	}
	return c.Stamps
}
