package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidateVoucher POST /vouchers/validate. Бизнес-отказы возвращаются как valid=false с причиной.
func (h *Handlers) ValidateVoucher(c *gin.Context) {
	var req validateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	validation, err := h.voucherService.Validate(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, validation)
}
