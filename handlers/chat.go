package handlers

import (
	"net/http"

	"wink/middleware"

	"github.com/gin-gonic/gin"
)

// GetInbox lists the user's conversations, latest first.
func (h *Handler) GetInbox(c *gin.Context) {
	userID := c.Param("userId")
	if err := middleware.CheckActor(c, userID); err != nil {
		h.writeError(c, err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	inbox, err := h.svc.Inbox.Inbox(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}
