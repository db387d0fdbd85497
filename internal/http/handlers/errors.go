// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, the
// message is for humans. serviceError maps the service sentinels onto a
// status and code so every handler reports the same failure the same way.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_or_expired",
//	  "message": "code invalid or expired"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/loyalty-bot-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeInvalidOrExpired = "invalid_or_expired"
	ErrCodeDeliveryFailed   = "delivery_failed"
	ErrCodeSessionExpired   = "session_expired"
	ErrCodeNoVendors        = "no_vendors"
	ErrCodeNotRegistered    = "not_registered"
	ErrCodeNoPendingInput   = "no_pending_input"
)

// errorMapping is consulted in order; the first sentinel matched wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrCodeStoreUnavailable},
	{services.ErrInvalidOrExpired, http.StatusGone, ErrCodeInvalidOrExpired},
	{services.ErrCustomerNotFound, http.StatusNotFound, ErrCodeNotRegistered},
	{services.ErrVendorNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrAlreadyExists, http.StatusConflict, ErrCodeConflict},
	{services.ErrSessionExpired, http.StatusConflict, ErrCodeSessionExpired},
	{services.ErrNoVendors, http.StatusServiceUnavailable, ErrCodeNoVendors},
	{services.ErrDeliveryFailed, http.StatusBadGateway, ErrCodeDeliveryFailed},
	{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrAdminProtected, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrNoPendingInput, http.StatusConflict, ErrCodeNoPendingInput},
	{services.ErrInvalidID, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
}

// serviceError returns the status and code for err. Unknown errors are 500.
func serviceError(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternal
}
