package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type EngagementHandler struct {
	svc services.EngagementService
}

func NewEngagementHandler(svc services.EngagementService) *EngagementHandler {
	return &EngagementHandler{svc: svc}
}

func (h *EngagementHandler) Create(c *gin.Context) {
	var req services.CreateEngagementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "EngagementHandler.Create", "invalid request body", err))
		return
	}

	eng, err := h.svc.CreateEngagement(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, eng)
}

type ScheduleOperationsRequest struct {
	Operations []services.OperationInput `json:"operations" binding:"required"`
}

func (h *EngagementHandler) ScheduleOperations(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid engagement id")
	if !ok {
		return
	}

	var req ScheduleOperationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "EngagementHandler.ScheduleOperations", "invalid request body", err))
		return
	}

	ops, err := h.svc.ScheduleOperations(c.Request.Context(), id, req.Operations)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"operations": ops})
}

func (h *EngagementHandler) ListOperations(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid engagement id")
	if !ok {
		return
	}

	ops, err := h.svc.ListOperations(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"operations": ops})
}

type RescheduleOperationRequest struct {
	DeliverAt time.Time `json:"deliver_at" binding:"required"`
}

func (h *EngagementHandler) RescheduleOperation(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid operation id")
	if !ok {
		return
	}

	var req RescheduleOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "EngagementHandler.RescheduleOperation", "invalid request body", err))
		return
	}

	op, err := h.svc.Reschedule(c.Request.Context(), id, req.DeliverAt)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, op)
}

func (h *EngagementHandler) CancelOperation(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid operation id")
	if !ok {
		return
	}

	if err := h.svc.CancelOperation(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func pathID(c *gin.Context, param, msg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "EngagementHandler", msg, err))
		return 0, false
	}
	return uint(id), true
}
