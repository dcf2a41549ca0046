package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wink/apperr"
	"wink/logger"
	"wink/services"

	"github.com/gin-gonic/gin"
)

// Services bundles what the handlers call into.
type Services struct {
	Auth      *services.AuthService
	Matching  *services.MatchingService
	Discovery *services.DiscoveryService
	Inbox     *services.InboxService
	Messages  *services.MessageService
	Profile   *services.ProfileService
}

type Handler struct {
	svc     Services
	log     *logger.Logger
	timeout time.Duration
}

func New(svc Services, log *logger.Logger, storeTimeout time.Duration) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if storeTimeout <= 0 {
		storeTimeout = 10 * time.Second
	}
	return &Handler{svc: svc, log: log, timeout: storeTimeout}
}

// ctx bounds the store work of one request.
func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	meta := apperr.MetadataFor(code)

	msg := meta.PublicMessage
	if e := apperr.As(err); e != nil {
		msg = e.PublicMessage()
	}

	ctx := h.log.WithField(c.Request.Context(), "code", string(code))
	if meta.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error(ctx, "request failed", err)
	} else {
		h.log.Debug(h.log.WithField(ctx, "reason", err.Error()), "request rejected")
	}
	c.JSON(meta.HTTPStatus, gin.H{"message": msg})
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.writeError(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

// optionalInt accepts a JSON number or a numeric string; null and "" mean
// not provided.
type optionalInt struct {
	Value int
	Valid bool
}

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*o = optionalInt{}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	*o = optionalInt{Value: n, Valid: true}
	return nil
}

func (o optionalInt) ptr() *int {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
