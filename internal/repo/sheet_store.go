// Package repo – SheetStore
//
// SheetStore is the durable record store: a row-oriented, spreadsheet-like
// table addressed by (sheet, 1-based row position). Rows are located by their
// first cell, cells are updated individually, and deleting a row shifts every
// later row up by one, exactly like removing a worksheet row.
package repo

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
)

// ErrNotFound is returned when a row lookup misses.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrInvalidPosition is returned for row or column indexes below 1.
var ErrInvalidPosition = errors.New("row and column positions are 1-based")

// SheetStore implements the record store on top of a sheet_rows table.
type SheetStore struct {
	db *gorm.DB

	// Latency is injected before every call to model a remote store.
	Latency time.Duration

	// writes serializes position-changing mutations (append, delete) and
	// conditional updates within this process.
	writes sync.Mutex
}

// NewSheetStore returns a SheetStore bound to db.
func NewSheetStore(db *gorm.DB) *SheetStore {
	return &SheetStore{db: db}
}

// FindRow returns the position of the first row whose first cell equals key.
func (s *SheetStore) FindRow(ctx context.Context, sheet, key string) (int, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	var row domain.SheetRow
	err := s.db.WithContext(ctx).
		Select("position").
		Where("sheet = ? AND key = ?", sheet, key).
		Order("position ASC").
		First(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Position, nil
}

// ReadRow returns the cells of the row at position.
func (s *SheetStore) ReadRow(ctx context.Context, sheet string, position int) ([]string, error) {
	if position < 1 {
		return nil, ErrInvalidPosition
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	row, err := loadRow(s.db.WithContext(ctx), sheet, position)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), row.Cells...), nil
}

// AppendRow adds a row after the last one.
func (s *SheetStore) AppendRow(ctx context.Context, sheet string, cells []string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.writes.Lock()
	defer s.writes.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last struct{ Position int }
		if err := tx.Model(&domain.SheetRow{}).
			Select("position").
			Where("sheet = ?", sheet).
			Order("position DESC").
			Limit(1).
			Scan(&last).Error; err != nil {
			return err
		}
		row := &domain.SheetRow{
			Sheet:    sheet,
			Position: last.Position + 1,
			Key:      firstCell(cells),
			Cells:    append([]string(nil), cells...),
		}
		return tx.Create(row).Error
	})
}

// UpdateCell overwrites one cell, padding the row with empty cells as needed.
func (s *SheetStore) UpdateCell(ctx context.Context, sheet string, position, col int, value string) error {
	if position < 1 || col < 1 {
		return ErrInvalidPosition
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.writes.Lock()
	defer s.writes.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := loadRow(tx, sheet, position)
		if err != nil {
			return err
		}
		return saveCell(tx, row, col, value)
	})
}

// CompareAndSwapCell writes value only when the cell still holds expected.
// It reports whether the write happened.
func (s *SheetStore) CompareAndSwapCell(ctx context.Context, sheet string, position, col int, expected, value string) (bool, error) {
	if position < 1 || col < 1 {
		return false, ErrInvalidPosition
	}
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	s.writes.Lock()
	defer s.writes.Unlock()

	swapped := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := loadRow(tx, sheet, position)
		if err != nil {
			return err
		}
		if cellAt(row.Cells, col) != expected {
			return nil
		}
		if err := saveCell(tx, row, col, value); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	return swapped, err
}

// ScanAll returns every row of sheet in position order.
func (s *SheetStore) ScanAll(ctx context.Context, sheet string) ([][]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	var rows []domain.SheetRow
	if err := s.db.WithContext(ctx).
		Where("sheet = ?", sheet).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, append([]string(nil), r.Cells...))
	}
	return out, nil
}

// DeleteRow removes the row at position and shifts later rows up.
func (s *SheetStore) DeleteRow(ctx context.Context, sheet string, position int) error {
	if position < 1 {
		return ErrInvalidPosition
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.writes.Lock()
	defer s.writes.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("sheet = ? AND position = ?", sheet, position).Delete(&domain.SheetRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&domain.SheetRow{}).
			Where("sheet = ? AND position > ?", sheet, position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
}

// wait applies the configured latency, honoring cancellation.
func (s *SheetStore) wait(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func loadRow(db *gorm.DB, sheet string, position int) (*domain.SheetRow, error) {
	var row domain.SheetRow
	if err := db.Where("sheet = ? AND position = ?", sheet, position).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func saveCell(tx *gorm.DB, row *domain.SheetRow, col int, value string) error {
	cells := append([]string(nil), row.Cells...)
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	row.Cells = cells
	row.Key = firstCell(cells)
	return tx.Save(row).Error
}

func firstCell(cells []string) string {
	if len(cells) == 0 {
		return ""
	}
	return cells[0]
}

func cellAt(cells []string, col int) string {
	if col < 1 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}
