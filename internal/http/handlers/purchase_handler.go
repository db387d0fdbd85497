// Purchase and redemption HTTP handlers.
//
//   - POST /purchases               (open a purchase request, list vendors)
//   - POST /purchases/selection     (choose a vendor, issue the ticket)
//   - POST /redemptions/{code}      (consume a voucher; Idempotency-Key aware)
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/loyalty-bot-backend/internal/http/middleware"
	"github.com/tbourn/loyalty-bot-backend/internal/services"
)

//
// DTOs
//

// SelectVendorRequest picks the vendor of an open purchase request.
type SelectVendorRequest struct {
	// Vendor id, or "todos" for every active vendor.
	Vendor string `json:"vendor" binding:"required" example:"123456"`
}

// SelectVendorResponse is returned when a ticket was minted. DeliveryFailed
// is set when no vendor could be reached; the ticket is live regardless.
type SelectVendorResponse struct {
	services.PurchaseReceipt
	DeliveryFailed bool `json:"delivery_failed,omitempty"`
}

// HeaderReplayed marks a response served from the idempotency store.
const HeaderReplayed = "Idempotency-Replayed"

//
// Handlers
//

// StartPurchase godoc
// @ID          startPurchase
// @Summary     Open a purchase request
// @Description Opens (or replaces) the caller's purchase request and lists the vendors to choose from.
// @Tags        Purchases
// @Produce     json
// @Param       X-User-ID    header  string  true   "Chat platform user id"
// @Param       X-User-Name  header  string  false  "Display name"
// @Success     200  {object}  services.PurchaseOptions
// @Failure     403  {object}  handlers.ErrorResponse  "Vendors cannot buy"
// @Failure     404  {object}  handlers.ErrorResponse  "Not registered"
// @Failure     503  {object}  handlers.ErrorResponse  "No vendors or store unavailable"
// @Router      /purchases [post]
func (h *Handlers) StartPurchase(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	opts, err := h.svc.Purchases.StartPurchase(c.Request.Context(), id, profile(c).FullName())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, opts)
}

// SelectVendor godoc
// @ID          selectVendor
// @Summary     Choose the vendor and issue the voucher
// @Tags        Purchases
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string                          true  "Chat platform user id"
// @Param       body       body    handlers.SelectVendorRequest    true  "Vendor choice"
// @Success     201  {object}  handlers.SelectVendorResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown vendor"
// @Failure     409  {object}  handlers.ErrorResponse  "No open purchase request"
// @Router      /purchases/selection [post]
func (h *Handlers) SelectVendor(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	var req SelectVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Vendor) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "vendor required")
		return
	}

	rcpt, err := h.svc.Purchases.SelectVendor(c.Request.Context(), id, strings.TrimSpace(req.Vendor))
	switch {
	case err == nil:
		ok(c, http.StatusCreated, SelectVendorResponse{PurchaseReceipt: rcpt})
	case errors.Is(err, services.ErrDeliveryFailed) && rcpt.Ticket.Code != "":
		middleware.LoggerFrom(c).Warn().Msg("ticket issued but not delivered")
		ok(c, http.StatusCreated, SelectVendorResponse{PurchaseReceipt: rcpt, DeliveryFailed: true})
	default:
		failErr(c, err)
	}
}

// Redeem godoc
// @ID          redeem
// @Summary     Redeem a voucher code
// @Description Consumes the code exactly once and adds one stamp to the caller. A retry with the same Idempotency-Key replays the original response.
// @Tags        Purchases
// @Produce     json
// @Param       X-User-ID        header  string  true   "Chat platform user id"
// @Param       Idempotency-Key  header  string  false  "Retry key"
// @Param       code             path    string  true   "Voucher code"
// @Success     200  {object}  services.RedemptionResult
// @Failure     410  {object}  handlers.ErrorResponse  "Code invalid or expired"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable, retry"
// @Router      /redemptions/{code} [post]
func (h *Handlers) Redeem(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	ctx := c.Request.Context()
	code := c.Param("code")
	key, _ := middleware.GetIdempotencyKey(c)

	if key != "" && h.svc.Replays != nil {
		if rec, err := h.svc.Replays.Get(ctx, id, code, key); err == nil && rec != nil {
			c.Header(HeaderReplayed, "true")
			c.Data(rec.Status, "application/json; charset=utf-8", []byte(rec.Response))
			return
		}
	}

	res, err := h.svc.Redemptions.Redeem(ctx, id, profile(c), code)
	if err != nil {
		failErr(c, err)
		return
	}

	if key != "" && h.svc.Replays != nil {
		if body, mErr := json.Marshal(res); mErr == nil {
			if sErr := h.svc.Replays.Save(ctx, id, code, key, http.StatusOK, body); sErr != nil {
				middleware.LoggerFrom(c).Warn().Err(sErr).Msg("store replay record")
			}
		}
	}
	ok(c, http.StatusOK, res)
}
