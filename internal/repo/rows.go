package repo

import (
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
)

// Column positions (1-based) of the customers sheet.
const (
	CustomerColID = iota + 1
	CustomerColUsername
	CustomerColName
	CustomerColRegistered
	CustomerColStamps
	CustomerColLastVendor
)

// Column positions (1-based) of the vendors sheet.
const (
	VendorColID = iota + 1
	VendorColName
	VendorColAdded
	VendorColActive
	VendorColTier
)

// Column positions (1-based) of the purchase history sheet.
const (
	HistoryColCustomerID = iota + 1
	HistoryColTimestamp
	HistoryColVendor
	HistoryColDelta
	HistoryColCategory
)

// Active flag values stored in the vendors sheet.
const (
	ActiveYes = "SI"
	ActiveNo  = "NO"
)

// DecodeCustomer maps a customers row to a Customer. Missing trailing cells
// decode to defaults: no name becomes DefaultCustomerName, a blank or
// malformed stamp count becomes 0.
func DecodeCustomer(cells []string) domain.Customer {
	c := domain.Customer{
		ID:           cell(cells, CustomerColID),
		Username:     cell(cells, CustomerColUsername),
		Name:         cell(cells, CustomerColName),
		RegisteredOn: cell(cells, CustomerColRegistered),
		Stamps:       ParseStamps(cell(cells, CustomerColStamps)),
		LastVendor:   cell(cells, CustomerColLastVendor),
	}
	if c.Name == "" {
		c.Name = domain.DefaultCustomerName
	}
	return c
}

// EncodeCustomer is the inverse of DecodeCustomer.
func EncodeCustomer(c domain.Customer) []string {
	return []string{
		c.ID,
		c.Username,
		c.Name,
		c.RegisteredOn,
		strconv.Itoa(c.Stamps),
		c.LastVendor,
	}
}

// ParseStamps reads a stamp cell; anything non-numeric or negative is 0.
func ParseStamps(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DecodeVendor maps a vendors row to a Vendor. A missing active cell means
// active, a missing tier means normal.
func DecodeVendor(cells []string) domain.Vendor {
	active := strings.ToUpper(cell(cells, VendorColActive))
	return domain.Vendor{
		ID:      cell(cells, VendorColID),
		Name:    cell(cells, VendorColName),
		AddedOn: cell(cells, VendorColAdded),
		Active:  active != ActiveNo,
		Tier:    domain.ParseTier(cell(cells, VendorColTier)),
	}
}

// EncodeVendor is the inverse of DecodeVendor.
func EncodeVendor(v domain.Vendor) []string {
	return []string{
		v.ID,
		v.Name,
		v.AddedOn,
		ActiveFlag(v.Active),
		string(v.Tier),
	}
}

// ActiveFlag renders the stored active marker.
func ActiveFlag(active bool) string {
	if active {
		return ActiveYes
	}
	return ActiveNo
}

// DecodeHistory maps a history row to a HistoryEntry. Timestamps are read in
// loc; an unparsable timestamp decodes to the zero time.
func DecodeHistory(cells []string, loc *time.Location) domain.HistoryEntry {
	if loc == nil {
		loc = time.UTC
	}
	at, _ := time.ParseInLocation(domain.TimestampLayout, cell(cells, HistoryColTimestamp), loc)
	delta, err := strconv.Atoi(cell(cells, HistoryColDelta))
	if err != nil {
		delta = 1
	}
	category := cell(cells, HistoryColCategory)
	if category == "" {
		category = domain.CategoryPurchase
	}
	return domain.HistoryEntry{
		CustomerID:  cell(cells, HistoryColCustomerID),
		At:          at,
		VendorLabel: cell(cells, HistoryColVendor),
		Delta:       delta,
		Category:    category,
	}
}

// EncodeHistory is the inverse of DecodeHistory.
func EncodeHistory(h domain.HistoryEntry) []string {
	return []string{
		h.CustomerID,
		h.At.Format(domain.TimestampLayout),
		h.VendorLabel,
		strconv.Itoa(h.Delta),
		h.Category,
	}
}

func cell(cells []string, col int) string {
	if col < 1 || col > len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col-1])
}
