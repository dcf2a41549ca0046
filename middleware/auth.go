package middleware

import (
	"net/http"
	"strings"

	"wink/apperr"
	"wink/auth"
	"wink/logger"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key holding the token's user id.
const ContextUserID = "userId"

// OptionalAuth accepts requests without a token. A token in the
// Authorization header or the token query parameter must be valid, and its
// user id is then stored under ContextUserID.
func OptionalAuth(tokens *auth.Issuer, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip middleware for OPTIONS requests (CORS preflight)
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		raw, present := tokenFrom(c)
		if !present {
			c.Next()
			return
		}
		if raw == "" {
			abort(c, "Format should be: Bearer <token>")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			if log != nil {
				log.Warn(log.WithField(c.Request.Context(), "reason", err.Error()), "token rejected")
			}
			abort(c, "")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		if log != nil {
			c.Request = c.Request.WithContext(log.WithUserID(c.Request.Context(), claims.UserID))
		}
		c.Next()
	}
}

// tokenFrom reports whether the request carries a token at all and returns
// it; a malformed Authorization header yields ("", true).
func tokenFrom(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, _ := auth.BearerToken(header)
		return token, true
	}
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token, true
	}
	return "", false
}

func abort(c *gin.Context, msg string) {
	err := apperr.Unauthorized(msg)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.PublicMessage()})
}

// CheckActor fails with Forbidden when the request is authenticated as a
// different user than actorID.
func CheckActor(c *gin.Context, actorID string) error {
	tokenUser := c.GetString(ContextUserID)
	if tokenUser == "" || tokenUser == actorID {
		return nil
	}
	return apperr.Forbidden("")
}
