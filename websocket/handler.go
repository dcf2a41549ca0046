package websocket

import (
	"context"
	"net/http"

	"wink/auth"
	"wink/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades /ws requests. A token query parameter is optional; when
// present it must be valid and binds the connection to its user.
// Connections without a token are trusted: they may join any user's room
// and receive that user's MATCH and MESSAGE frames.
type Handler struct {
	hub      *Hub
	tokens   *auth.Issuer
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewHandler(hub *Hub, tokens *auth.Issuer, allowOrigin func(origin string) bool, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if allowOrigin == nil {
		allowOrigin = func(string) bool { return true }
	}
	return &Handler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowOrigin(r.Header.Get("Origin"))
			},
		},
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := h.log.WithField(r.Context(), "conn_id", uuid.NewString())

	var userID string
	if token := r.URL.Query().Get("token"); token != "" && h.tokens != nil {
		claims, err := h.tokens.Parse(token)
		if err != nil {
			h.log.Warn(ctx, "websocket rejected: invalid token")
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
		ctx = h.log.WithUserID(ctx, userID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Error(ctx, "websocket upgrade", err)
		return
	}

	// r.Context() is cancelled when ServeHTTP returns; keep only its values.
	c := newClient(context.WithoutCancel(ctx), h.hub, conn, userID, h.log)
	h.hub.register(c)
	if userID != "" {
		h.hub.Join(userID, c)
	}
	c.reply(EventConnected, map[string]string{"userId": userID})

	go c.writePump()
	go c.readPump()
	h.log.Debug(ctx, "websocket connected")
}
