package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"wink/auth"
	"wink/config"
	"wink/handlers"
	"wink/logger"
	"wink/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs from main.
type Deps struct {
	Handler   *handlers.Handler
	Tokens    *auth.Issuer
	CORS      config.CORSConfig
	Log       *logger.Logger
	WebSocket http.Handler

	// Ping checks the database for /health; nil reports healthy.
	Ping     func(ctx context.Context) error
	Gatherer prometheus.Gatherer
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(d.Log), middleware.Logging(d.Log))

	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  d.CORS.Allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := healthHandler(d.Ping)
	router.GET("/health", health)
	router.GET("/api/health", health)

	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.WebSocket != nil {
		router.GET("/ws", gin.WrapH(d.WebSocket))
	}

	h := d.Handler
	api := router.Group("/api/auth")
	api.Use(middleware.OptionalAuth(d.Tokens, d.Log))

	// Accounts
	api.POST("/signup", h.Signup)
	api.POST("/login", h.Login)

	// Discovery and matching
	api.GET("/users", h.ListUsers)
	api.POST("/wink", h.Wink)
	api.GET("/matches", h.GetMatches)

	// Chat
	api.POST("/messages", h.SendMessage)
	api.GET("/messages/:myId/:theirId", h.GetMessages)
	api.GET("/inbox/:userId", h.GetInbox)

	// Profile
	api.PUT("/profile", h.UpdateProfile)
	api.POST("/profile/image", h.UploadImage)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return router
}

func healthHandler(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "time": time.Now().Unix()}
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	}
}
