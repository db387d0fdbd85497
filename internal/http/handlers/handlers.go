// Package handlers exposes the loyalty services over HTTP.
//
// Handlers are transport-thin: they read the caller identity set by
// middleware.Identity, validate input, call a service and translate the
// result. Role checks that belong to the domain (who may buy, who sees
// which report) live in the services; the coarse admin gate lives here.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/http/middleware"
	"github.com/tbourn/loyalty-bot-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// Directory is the vendor directory.
type Directory interface {
	ActiveVendors(ctx context.Context) []domain.Vendor
	ResolveRole(ctx context.Context, id string) domain.Role
	AddVendor(ctx context.Context, id, name string, tier domain.Tier) (domain.Vendor, error)
	DeactivateVendor(ctx context.Context, id string) error
	CleanupDuplicates(ctx context.Context) (int, error)
	Summary(ctx context.Context) (services.VendorSummary, error)
}

// CustomerService manages customer rows and stamp cards.
type CustomerService interface {
	Register(ctx context.Context, id string, p services.Profile, fallbackName string) (domain.Customer, error)
	AddCustomer(ctx context.Context, id, name string) (domain.Customer, error)
	RemoveCustomer(ctx context.Context, id string) (domain.Customer, error)
	Stamps(ctx context.Context, id string) (services.StampCard, error)
	History(ctx context.Context, id string, limit int) (services.PurchaseHistory, error)
}

// PurchaseService runs the two-step purchase request.
type PurchaseService interface {
	StartPurchase(ctx context.Context, customerID, displayName string) (services.PurchaseOptions, error)
	SelectVendor(ctx context.Context, customerID, choice string) (services.PurchaseReceipt, error)
}

// Redeemer consumes voucher codes.
type Redeemer interface {
	Redeem(ctx context.Context, customerID string, p services.Profile, code string) (services.RedemptionResult, error)
}

// ReportService builds the read-only reports.
type ReportService interface {
	VendorSales(ctx context.Context, vendorID string) (services.SalesReport, error)
	Ranking(ctx context.Context) (services.Ranking, error)
	Stats(ctx context.Context) (services.Stats, error)
}

// AdminService runs the admin flows.
type AdminService interface {
	Reset(ctx context.Context) services.ResetReport
	Arm(adminID string, kind services.InputKind) error
	SubmitPendingInput(ctx context.Context, adminID, text string) (services.InputResult, error)
}

// ReplayStore persists redemption responses for Idempotency-Key retries.
// Get returns (nil, nil) when nothing is stored.
type ReplayStore interface {
	Get(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error)
	Save(ctx context.Context, userID, scope, key string, status int, body []byte) error
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers. Replays may be nil.
type Services struct {
	Vendors     Directory
	Customers   CustomerService
	Purchases   PurchaseService
	Redemptions Redeemer
	Reports     ReportService
	Admin       AdminService
	Replays     ReplayStore
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	svc Services
}

// New constructs Handlers bound to svc.
func New(svc Services) *Handlers {
	return &Handlers{svc: svc}
}

// caller returns the identified user or aborts with 401.
func caller(c *gin.Context) (string, bool) {
	id := middleware.UserID(c)
	if id == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing "+middleware.HeaderUserID)
		return "", false
	}
	return id, true
}

// profile is what the gateway told us about the caller.
func profile(c *gin.Context) services.Profile {
	return services.Profile{
		Username:  middleware.Username(c),
		FirstName: middleware.UserName(c),
	}
}

// RequireRole returns a middleware admitting only callers whose resolved
// role is one of roles.
func (h *Handlers) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, okID := caller(c)
		if !okID {
			return
		}
		role := h.svc.Vendors.ResolveRole(c.Request.Context(), id)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		fail(c, http.StatusForbidden, ErrCodeForbidden, "operation not allowed for role "+string(role))
	}
}
