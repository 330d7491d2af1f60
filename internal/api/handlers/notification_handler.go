package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/utils"
)

type NotificationLogHandler struct {
	logs mongorepo.NotificationLogRepository
}

func NewNotificationLogHandler(logs mongorepo.NotificationLogRepository) *NotificationLogHandler {
	return &NotificationLogHandler{logs: logs}
}

// List returns recent delivery-log entries for one recipient, newest first.
func (h *NotificationLogHandler) List(c *gin.Context) {
	const op = "NotificationLogHandler.List"

	recipient := c.Query("recipient")
	if recipient == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "recipient is required", nil))
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 200 {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "limit must be between 1 and 200", err))
			return
		}
		limit = n
	}

	entries, err := h.logs.ListByRecipient(c.Request.Context(), recipient, limit)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to list delivery log", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
