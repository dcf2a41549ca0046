package middleware

import (
	"wink/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID reuses the caller's request id or generates one, echoes it in
// the response and attaches it to the request's log context.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)
		c.Set("requestId", reqID)

		if log != nil {
			c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), reqID))
		}
		c.Next()
	}
}
