// Package services defines the business logic of the loyalty program.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Store and ledger errors.
var (
	// ErrStoreUnavailable wraps any record store failure. The operation must be
	// treated as not applied; the caller should retry.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrNotFound is the generic lookup miss. The customer and vendor
	// misses wrap it.
	ErrNotFound = errors.New("not found")

	// ErrCustomerNotFound indicates the customer has no row yet.
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)

	// ErrVendorNotFound indicates no active vendor with that identity.
	ErrVendorNotFound = fmt.Errorf("vendor %w", ErrNotFound)

	// ErrAlreadyExists is returned when adding a vendor or customer that is
	// already present.
	ErrAlreadyExists = errors.New("already exists")
)

// Voucher errors.
var (
	// ErrInvalidOrExpired is returned when a code is absent, already consumed,
	// or past its lifetime.
	ErrInvalidOrExpired = errors.New("code invalid or expired")

	// ErrDeliveryFailed means no vendor received the ticket. The ticket stays
	// live until it expires.
	ErrDeliveryFailed = errors.New("ticket delivery failed")

	// ErrSessionExpired means the customer has no open purchase request.
	ErrSessionExpired = errors.New("purchase request expired")

	// ErrNoVendors is returned when there is nobody to send a ticket to.
	ErrNoVendors = errors.New("no vendors available")
)

// Request validation errors.
var (
	ErrInvalidID      = errors.New("id must be numeric")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("operation not allowed for this role")
	ErrAdminProtected = errors.New("the administrator cannot be modified")
	ErrNoPendingInput = errors.New("no pending admin input")
)
