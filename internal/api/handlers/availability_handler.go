package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type AvailabilityHandler struct {
	svc      services.AvailabilityService
	identity services.IdentityService
}

func NewAvailabilityHandler(svc services.AvailabilityService, identity services.IdentityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, identity: identity}
}

type CreateSlotsRequest struct {
	Start      time.Time            `json:"start" binding:"required"`
	End        time.Time            `json:"end" binding:"required"`
	Notes      string               `json:"notes"`
	Recurrence *services.Recurrence `json:"recurrence"`
}

func (h *AvailabilityHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AvailabilityHandler.Create", "invalid request body", err))
		return
	}

	interviewer, err := h.identity.InterviewerByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	slots, err := h.svc.CreateSlots(c.Request.Context(), interviewer.ID, services.CreateSlotsInput{
		Start:      req.Start,
		End:        req.End,
		Notes:      req.Notes,
		Recurrence: req.Recurrence,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"slots": slots})
}

func (h *AvailabilityHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	interviewer, err := h.identity.InterviewerByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	slots, err := h.svc.ListForInterviewer(c.Request.Context(), interviewer.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *AvailabilityHandler) ListForInterviewer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("interviewer_id"), 10, 32)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AvailabilityHandler.ListForInterviewer", "invalid interviewer id", err))
		return
	}

	slots, err := h.svc.ListForInterviewer(c.Request.Context(), uint(id))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
