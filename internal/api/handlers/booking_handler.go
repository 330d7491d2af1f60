package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type BookingHandler struct {
	bookings      services.BookingService
	confirmations services.ConfirmationService
}

func NewBookingHandler(bookings services.BookingService, confirmations services.ConfirmationService) *BookingHandler {
	return &BookingHandler{bookings: bookings, confirmations: confirmations}
}

type DispatchRequest struct {
	CandidateID   uint      `json:"candidate_id" binding:"required"`
	SlotIDs       []uint    `json:"slot_ids" binding:"required"`
	ProposedStart time.Time `json:"proposed_start" binding:"required"`
}

func (h *BookingHandler) Dispatch(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "BookingHandler.Dispatch", "invalid request body", err))
		return
	}

	reqs, err := h.bookings.Dispatch(c.Request.Context(), services.DispatchInput{
		CandidateID:   req.CandidateID,
		SlotIDs:       req.SlotIDs,
		ProposedStart: req.ProposedStart,
		RequestedBy:   userID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"requests": reqs})
}

// Confirm settles an emailed accept/reject link. Unauthenticated: the token
// itself is the credential.
func (h *BookingHandler) Confirm(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "BookingHandler.Confirm", "invalid confirmation link", nil))
		return
	}

	result, err := h.confirmations.Confirm(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
