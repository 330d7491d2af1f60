package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type InterviewHandler struct {
	interviews services.InterviewService
	feedback   services.FeedbackService
}

func NewInterviewHandler(interviews services.InterviewService, feedback services.FeedbackService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, feedback: feedback}
}

func (h *InterviewHandler) Get(c *gin.Context) {
	id, ok := interviewID(c)
	if !ok {
		return
	}

	iv, err := h.interviews.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, iv)
}

type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func (h *InterviewHandler) Reschedule(c *gin.Context) {
	id, ok := interviewID(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Reschedule", "invalid request body", err))
		return
	}

	iv, err := h.interviews.Reschedule(c.Request.Context(), id, req.ScheduledAt)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) History(c *gin.Context) {
	id, ok := interviewID(c)
	if !ok {
		return
	}

	chain, err := h.interviews.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interviews": chain})
}

func (h *InterviewHandler) GetFeedback(c *gin.Context) {
	id, ok := interviewID(c)
	if !ok {
		return
	}

	fb, err := h.feedback.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, fb)
}

func (h *InterviewHandler) SaveFeedbackDraft(c *gin.Context) {
	id, ok := interviewID(c)
	if !ok {
		return
	}

	var req services.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.SaveFeedbackDraft", "invalid request body", err))
		return
	}

	fb, err := h.feedback.SaveDraft(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, fb)
}

func (h *InterviewHandler) SubmitFeedback(c *gin.Context) {
	id, ok := interviewID(c)
	if !ok {
		return
	}

	var req services.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.SubmitFeedback", "invalid request body", err))
		return
	}

	fb, err := h.feedback.Submit(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, fb)
}

func interviewID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler", "invalid interview id", err))
		return 0, false
	}
	return uint(id), true
}
