// README: Billing handlers (facility statements, check verification, flags).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medride/internal/modules/billing"
	"medride/internal/types"
)

type BillingHandler struct {
	billing *billing.Service
}

func NewBillingHandler(svc *billing.Service) *BillingHandler {
	return &BillingHandler{billing: svc}
}

func (h *BillingHandler) FacilityStatement(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		writeError(c, http.StatusBadRequest, "missing month")
		return
	}
	st, err := h.billing.FacilityStatement(c.Request.Context(), types.ID(c.Param("id")), month)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *BillingHandler) VerifyCheck(c *gin.Context) {
	err := h.billing.VerifyCheckPayment(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_status": string(billing.StatusCheckVerified)})
}

func (h *BillingHandler) Flag(c *gin.Context) {
	err := h.billing.FlagPayment(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_status": string(billing.StatusNeedsAttention)})
}
