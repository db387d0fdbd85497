// Report HTTP handlers.
//
//   - GET /vendors/me/sales    (customers attributed to the calling vendor)
//   - GET /reports/ranking     (admin, premium)
//   - GET /reports/stats       (admin, premium)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MySales godoc
// @ID          mySales
// @Summary     Customers whose last purchase went through the caller
// @Description The admin sees every customer and the estimated revenue.
// @Tags        Reports
// @Produce     json
// @Param       X-User-ID  header  string  true  "Vendor id"
// @Success     200  {object}  services.SalesReport
// @Failure     403  {object}  handlers.ErrorResponse  "Not a vendor"
// @Router      /vendors/me/sales [get]
func (h *Handlers) MySales(c *gin.Context) {
	id, okID := caller(c)
	if !okID {
		return
	}
	rep, err := h.svc.Reports.VendorSales(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rep)
}

// Ranking godoc
// @ID          ranking
// @Summary     Vendor ranking by recorded sales
// @Tags        Reports
// @Produce     json
// @Param       X-User-ID  header  string  true  "Admin or premium vendor id"
// @Success     200  {object}  services.Ranking
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /reports/ranking [get]
func (h *Handlers) Ranking(c *gin.Context) {
	r, err := h.svc.Reports.Ranking(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// Stats godoc
// @ID          stats
// @Summary     Program statistics
// @Tags        Reports
// @Produce     json
// @Param       X-User-ID  header  string  true  "Admin or premium vendor id"
// @Success     200  {object}  services.Stats
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /reports/stats [get]
func (h *Handlers) Stats(c *gin.Context) {
	st, err := h.svc.Reports.Stats(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}
