// Customer HTTP handlers.
//
//   - GET  /me                       (role of the caller)
//   - POST /start?arg=               (bot entry: deep-link redemption or role)
//   - POST /customers/register       (self-registration)
//   - GET  /customers/me/stamps      (stamp card)
//   - GET  /customers/me/history     (recent purchases)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/services"
	"github.com/tbourn/loyalty-bot-backend/internal/utils"
)

//
// DTOs
//

// MeResponse describes the caller.
type MeResponse struct {
	UserID string      `json:"user_id" example:"123456789"`
	Role   domain.Role `json:"role" example:"customer"`
}

// StartResponse is the bot entry result. Redemption is set when the deep
// link carried a voucher code.
type StartResponse struct {
	Role       domain.Role                `json:"role" example:"customer"`
	Redemption *services.RedemptionResult `json:"redemption,omitempty"`
}

// RegisterRequest optionally overrides the gateway-provided name.
type RegisterRequest struct {
	Name string `json:"name" example:"Camila Ruiz"`
}

const (
	defaultHistoryLimit = services.DefaultHistoryLimit
	maxHistoryLimit     = 50
)

//
// Handlers
//

// Me godoc
// @ID          me
// @Summary     Resolve the caller role
// @Tags        Customers
// @Produce     json
// @Param       X-User-ID  header  string  true  "Chat platform user id"
// @Success     200  {object}  handlers.MeResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	ok(c, http.StatusOK, MeResponse{UserID: id, Role: h.svc.Vendors.ResolveRole(c.Request.Context(), id)})
}

// Start godoc
// @ID          start
// @Summary     Bot entry command
// @Description A "compra_" argument redeems the voucher for the caller; anything else returns the caller role. POST only, so link previews and prefetchers cannot consume a code.
// @Tags        Customers
// @Produce     json
// @Param       X-User-ID    header  string  true   "Chat platform user id"
// @Param       X-User-Name  header  string  false  "Display name"
// @Param       X-Username   header  string  false  "Platform handle"
// @Param       arg          query   string  false  "Deep-link argument"
// @Success     200  {object}  handlers.StartResponse
// @Failure     410  {object}  handlers.ErrorResponse  "Code invalid or expired"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /start [post]
func (h *Handlers) Start(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	ctx := c.Request.Context()
	arg := strings.TrimSpace(c.Query("arg"))
	if services.IsTicketCode(arg) {
		res, err := h.svc.Redemptions.Redeem(ctx, id, profile(c), arg)
		if err != nil {
			failErr(c, err)
			return
		}
		ok(c, http.StatusOK, StartResponse{Role: h.svc.Vendors.ResolveRole(ctx, id), Redemption: &res})
		return
	}
	ok(c, http.StatusOK, StartResponse{Role: h.svc.Vendors.ResolveRole(ctx, id)})
}

// Register godoc
// @ID          registerCustomer
// @Summary     Register the caller as a customer
// @Tags        Customers
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header  string  true   "Chat platform user id"
// @Param       X-User-Name  header  string  false  "Display name"
// @Param       body         body    handlers.RegisterRequest  false  "Optional name"
// @Success     201  {object}  domain.Customer
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Vendors cannot register"
// @Failure     409  {object}  handlers.ErrorResponse  "Already registered"
// @Router      /customers/register [post]
func (h *Handlers) Register(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	var req RegisterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	p := profile(c)
	if name := strings.TrimSpace(req.Name); name != "" {
		p.FirstName, p.LastName = name, ""
	}
	cust, err := h.svc.Customers.Register(c.Request.Context(), id, p, "")
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cust)
}

// MyStamps godoc
// @ID          myStamps
// @Summary     Stamp card of the caller
// @Tags        Customers
// @Produce     json
// @Param       X-User-ID  header  string  true  "Chat platform user id"
// @Success     200  {object}  services.StampCard
// @Failure     404  {object}  handlers.ErrorResponse  "Not registered"
// @Router      /customers/me/stamps [get]
func (h *Handlers) MyStamps(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	card, err := h.svc.Customers.Stamps(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, card)
}

// MyHistory godoc
// @ID          myHistory
// @Summary     Recent purchases of the caller, newest first
// @Tags        Customers
// @Produce     json
// @Param       X-User-ID  header  string  true   "Chat platform user id"
// @Param       limit      query   int     false  "Entries to return"  minimum(1) maximum(50) default(10)
// @Success     200  {object}  services.PurchaseHistory
// @Failure     404  {object}  handlers.ErrorResponse  "Not registered"
// @Router      /customers/me/history [get]
func (h *Handlers) MyHistory(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), defaultHistoryLimit), 1, maxHistoryLimit)
	hist, err := h.svc.Customers.History(c.Request.Context(), id, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, hist)
}
