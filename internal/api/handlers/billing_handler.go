package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type BillingHandler struct {
	svc services.BillingService
}

func NewBillingHandler(svc services.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// List filters by record_type (CLB|INP) and month (YYYY-MM), both optional.
func (h *BillingHandler) List(c *gin.Context) {
	recordType := c.Query("record_type")

	var month time.Time
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "BillingHandler.List", "month must be YYYY-MM", err))
			return
		}
		month = parsed
	}

	recs, err := h.svc.List(c.Request.Context(), recordType, month)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": recs})
}
