package handlers

import (
	"net/http"

	"wink/middleware"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
}

// SendMessage only stores the message; live delivery goes over the socket.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !h.bind(c, &req) {
		return
	}
	if err := middleware.CheckActor(c, req.Sender); err != nil {
		h.writeError(c, err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	msg, err := h.svc.Messages.Send(ctx, req.Sender, req.Receiver, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) GetMessages(c *gin.Context) {
	myID := c.Param("myId")
	if err := middleware.CheckActor(c, myID); err != nil {
		h.writeError(c, err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	msgs, err := h.svc.Messages.History(ctx, myID, c.Param("theirId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
