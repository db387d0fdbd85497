package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

// RecordStore is the durable, row-oriented store of customers, vendors and
// purchase history. Rows and columns are 1-based. Every call may fail with a
// transient error, which callers treat as "did not happen".
type RecordStore interface {
	// FindRow returns the first row whose first cell equals key, or
	// repo.ErrNotFound.
	FindRow(ctx context.Context, sheet, key string) (int, error)
	ReadRow(ctx context.Context, sheet string, row int) ([]string, error)
	AppendRow(ctx context.Context, sheet string, cells []string) error
	UpdateCell(ctx context.Context, sheet string, row, col int, value string) error
	ScanAll(ctx context.Context, sheet string) ([][]string, error)
	DeleteRow(ctx context.Context, sheet string, row int) error
}

// CellSwapper is implemented by stores that support a conditional update.
type CellSwapper interface {
	CompareAndSwapCell(ctx context.Context, sheet string, row, col int, expected, value string) (bool, error)
}

// RowGuard orders physical row deletions against writes that address rows
// by position. Deleting shifts later positions, so deleters hold the write
// lock and position-addressed writers hold the read lock. A nil guard is a
// no-op.
type RowGuard struct{ mu sync.RWMutex }

func (g *RowGuard) write() func() {
	if g == nil {
		return func() {}
	}
	g.mu.Lock()
	return g.mu.Unlock
}

func (g *RowGuard) read() func() {
	if g == nil {
		return func() {}
	}
	g.mu.RLock()
	return g.mu.RUnlock
}

// storeErr tags a store failure as ErrStoreUnavailable, keeping the cause.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// findCustomer locates a customer row. It returns ErrCustomerNotFound on a
// miss and a wrapped ErrStoreUnavailable on any other failure.
func findCustomer(ctx context.Context, store RecordStore, id string) (int, domain.Customer, error) {
	row, err := store.FindRow(ctx, domain.SheetCustomers, id)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, domain.Customer{}, ErrCustomerNotFound
	}
	if err != nil {
		return 0, domain.Customer{}, storeErr("find customer", err)
	}
	cells, err := store.ReadRow(ctx, domain.SheetCustomers, row)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, domain.Customer{}, ErrCustomerNotFound
	}
	if err != nil {
		return 0, domain.Customer{}, storeErr("read customer", err)
	}
	return row, repo.DecodeCustomer(cells), nil
}

// validID reports whether id is a platform id (digits only).
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// cleanName normalizes free text names: NFC, trimmed, single spaces.
func cleanName(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// vendorName is how vendor names are stored: spaces become underscores.
func vendorName(s string) string {
	return strings.ReplaceAll(cleanName(s), " ", "_")
}

func today(now time.Time) string { return now.Format(domain.DateLayout) }
