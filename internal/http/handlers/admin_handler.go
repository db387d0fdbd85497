// Admin HTTP handlers. Every route here sits behind RequireRole(RoleAdmin).
//
//   - GET    /vendors                   (directory summary)
//   - POST   /admin/vendors             (add vendor)
//   - DELETE /admin/vendors/{id}        (deactivate vendor)
//   - POST   /admin/vendors/dedupe      (remove duplicate vendor rows)
//   - POST   /admin/customers           (add customer)
//   - DELETE /admin/customers/{id}      (remove customer)
//   - POST   /admin/inputs              (arm a pending text input)
//   - POST   /admin/inputs/submit       (submit the pending text)
//   - POST   /admin/reset               (flush in-process state)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/services"
)

//
// DTOs
//

// AddVendorRequest adds a vendor.
type AddVendorRequest struct {
	ID   string `json:"id" binding:"required" example:"123456"`
	Name string `json:"name" binding:"required" example:"Maria Jose"`
	// Tier is "normal" (default) or "premium".
	Tier string `json:"tier" example:"premium"`
}

// AddCustomerRequest adds a customer.
type AddCustomerRequest struct {
	ID   string `json:"id" binding:"required" example:"987654"`
	Name string `json:"name" binding:"required" example:"Camila Ruiz"`
}

// ArmInputRequest arms a pending admin input.
type ArmInputRequest struct {
	Kind string `json:"kind" binding:"required" example:"add_vendor_premium"`
}

// SubmitInputRequest carries the free text of an armed input.
type SubmitInputRequest struct {
	Text string `json:"text" binding:"required" example:"123456 Maria Jose"`
}

// DedupeResponse reports the duplicate rows removed.
type DedupeResponse struct {
	Removed int `json:"removed"`
}

//
// Handlers
//

// ListVendors godoc
// @ID          listVendors
// @Summary     Vendor directory summary
// @Tags        Admin
// @Produce     json
// @Param       X-User-ID  header  string  true  "Admin id"
// @Success     200  {object}  services.VendorSummary
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /vendors [get]
func (h *Handlers) ListVendors(c *gin.Context) {
	sum, err := h.svc.Vendors.Summary(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}

// AddVendor godoc
// @ID          addVendor
// @Summary     Add a vendor
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string                     true  "Admin id"
// @Param       body       body    handlers.AddVendorRequest  true  "Vendor"
// @Success     201  {object}  domain.Vendor
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Already a vendor"
// @Router      /admin/vendors [post]
func (h *Handlers) AddVendor(c *gin.Context) {
	var req AddVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id and name required")
		return
	}
	tier := domain.TierNormal
	switch strings.ToLower(strings.TrimSpace(req.Tier)) {
	case "", string(domain.TierNormal):
	case string(domain.TierPremium):
		tier = domain.TierPremium
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tier must be normal or premium")
		return
	}
	v, err := h.svc.Vendors.AddVendor(c.Request.Context(), strings.TrimSpace(req.ID), req.Name, tier)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, v)
}

// DeactivateVendor godoc
// @ID          deactivateVendor
// @Summary     Deactivate a vendor
// @Tags        Admin
// @Param       X-User-ID  header  string  true  "Admin id"
// @Param       id         path    string  true  "Vendor id"
// @Success     204
// @Failure     403  {object}  handlers.ErrorResponse  "The admin cannot be removed"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /admin/vendors/{id} [delete]
func (h *Handlers) DeactivateVendor(c *gin.Context) {
	if err := h.svc.Vendors.DeactivateVendor(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DedupeVendors godoc
// @ID          dedupeVendors
// @Summary     Delete duplicate active vendor rows
// @Tags        Admin
// @Produce     json
// @Param       X-User-ID  header  string  true  "Admin id"
// @Success     200  {object}  handlers.DedupeResponse
// @Router      /admin/vendors/dedupe [post]
func (h *Handlers) DedupeVendors(c *gin.Context) {
	n, err := h.svc.Vendors.CleanupDuplicates(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, DedupeResponse{Removed: n})
}

// AddCustomer godoc
// @ID          addCustomer
// @Summary     Add a customer
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string                       true  "Admin id"
// @Param       body       body    handlers.AddCustomerRequest  true  "Customer"
// @Success     201  {object}  domain.Customer
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /admin/customers [post]
func (h *Handlers) AddCustomer(c *gin.Context) {
	var req AddCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id and name required")
		return
	}
	cust, err := h.svc.Customers.AddCustomer(c.Request.Context(), strings.TrimSpace(req.ID), req.Name)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cust)
}

// RemoveCustomer godoc
// @ID          removeCustomer
// @Summary     Remove a customer row
// @Tags        Admin
// @Produce     json
// @Param       X-User-ID  header  string  true  "Admin id"
// @Param       id         path    string  true  "Customer id"
// @Success     200  {object}  domain.Customer
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /admin/customers/{id} [delete]
func (h *Handlers) RemoveCustomer(c *gin.Context) {
	cust, err := h.svc.Customers.RemoveCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, cust)
}

// ArmInput godoc
// @ID          armInput
// @Summary     Arm a pending admin input
// @Description The next submitted text is parsed for the armed action. Kinds: add_vendor_normal, add_vendor_premium, add_customer, remove_customer.
// @Tags        Admin
// @Accept      json
// @Param       X-User-ID  header  string                    true  "Admin id"
// @Param       body       body    handlers.ArmInputRequest  true  "Input kind"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /admin/inputs [post]
func (h *Handlers) ArmInput(c *gin.Context) {
	var req ArmInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind required")
		return
	}
	id, _ := caller(c)
	if err := h.svc.Admin.Arm(id, services.InputKind(strings.TrimSpace(req.Kind))); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitInput godoc
// @ID          submitInput
// @Summary     Submit the text of the armed admin input
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string                       true  "Admin id"
// @Param       body       body    handlers.SubmitInputRequest  true  "Text"
// @Success     200  {object}  services.InputResult
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Nothing armed"
// @Router      /admin/inputs/submit [post]
func (h *Handlers) SubmitInput(c *gin.Context) {
	var req SubmitInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	id, _ := caller(c)
	res, err := h.svc.Admin.SubmitPendingInput(c.Request.Context(), id, req.Text)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// Reset godoc
// @ID          reset
// @Summary     Flush in-process state
// @Description Drops the vendor snapshot, live tickets, purchase requests and armed inputs. The record store is untouched.
// @Tags        Admin
// @Produce     json
// @Param       X-User-ID  header  string  true  "Admin id"
// @Success     200  {object}  services.ResetReport
// @Router      /admin/reset [post]
func (h *Handlers) Reset(c *gin.Context) {
	ok(c, http.StatusOK, h.svc.Admin.Reset(c.Request.Context()))
}
