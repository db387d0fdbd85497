// Package domain defines the core types of the loyalty program: customers,
// vendors, purchase history, voucher tickets and purchase sessions, plus the
// GORM models backing the row-oriented record store.
package domain

import (
	"strings"
	"time"
)

// Logical tables of the record store. The names match the worksheets the
// bot has always used so exported data stays recognizable.
const (
	SheetCustomers = "registro_clientes"
	SheetVendors   = "Vendedores"
	SheetHistory   = "HistorialCompras"
)

const (
	// AllVendorsLabel is the vendor label of a ticket sent to every vendor.
	AllVendorsLabel = "todos los vendedores"
	// UnknownVendorLabel marks a ticket whose vendor could not be resolved.
	UnknownVendorLabel = "vendedor_desconocido"
	// CategoryPurchase tags history entries produced by a redemption.
	CategoryPurchase = "compra_normal"
	// CodePrefix is the routing marker of a redemption code in a deep link.
	CodePrefix = "compra_"
	// DefaultCustomerName is used when a row carries no display name.
	DefaultCustomerName = "Sin nombre"
)

// Date layouts used for stored cells.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Tier is the privilege tier of a vendor.
type Tier string

const (
	TierNormal  Tier = "normal"
	TierPremium Tier = "premium"
	TierAdmin   Tier = "admin"
)

// ParseTier maps a stored cell to a Tier; anything unknown is normal.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierPremium:
		return TierPremium
	case TierAdmin:
		return TierAdmin
	default:
		return TierNormal
	}
}

// Role is the resolved privilege of a caller.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleNormal   Role = "normal"
	RolePremium  Role = "premium"
	RoleAdmin    Role = "admin"
)

// IsVendor reports whether the role belongs to staff.
func (r Role) IsVendor() bool { return r != RoleCustomer }

// Customer is a loyalty member.
type Customer struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	RegisteredOn string `json:"registered_on"`
	Stamps       int    `json:"stamps"`
	LastVendor   string `json:"last_vendor,omitempty"`
}

// Vendor is a staff account able to receive and redeem vouchers.
type Vendor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	AddedOn string `json:"added_on,omitempty"`
	Active  bool   `json:"active"`
	Tier    Tier   `json:"tier"`
}

// HistoryEntry is one append-only purchase record.
type HistoryEntry struct {
	CustomerID  string    `json:"customer_id"`
	At          time.Time `json:"at"`
	VendorLabel string    `json:"vendor"`
	Delta       int       `json:"delta"`
	Category    string    `json:"category"`
}

// Ticket is a single-use voucher pending redemption.
type Ticket struct {
	Code          string    `json:"code"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	VendorLabel   string    `json:"vendor_label"`
	Targets       []string  `json:"targets"`
	StampSnapshot int       `json:"stamp_snapshot"`
	CreatedAt     time.Time `json:"created_at"`
}

// PurchaseSession records that a customer is choosing a vendor.
type PurchaseSession struct {
	CustomerID  string
	DisplayName string
	CreatedAt   time.Time
}

// SheetRow is one positional row of a logical table. Positions are 1-based
// and contiguous within a sheet; Key mirrors the first cell for lookups.
type SheetRow struct {
	ID        uint      `gorm:"primaryKey"`
	Sheet     string    `gorm:"type:varchar(64);not null;index:idx_sheet_position,priority:1;index:idx_sheet_key,priority:1"`
	Position  int       `gorm:"not null;index:idx_sheet_position,priority:2"`
	Key       string    `gorm:"type:varchar(128);not null;default:'';index:idx_sheet_key,priority:2"`
	Cells     []string  `gorm:"serializer:json;type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name for SheetRow.
func (SheetRow) TableName() string { return "sheet_rows" }
