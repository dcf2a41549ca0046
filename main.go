package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wink/auth"
	"wink/config"
	"wink/database"
	"wink/handlers"
	"wink/logger"
	"wink/media"
	"wink/metrics"
	"wink/routes"
	"wink/services"
	"wink/store"
	"wink/store/memstore"
	"wink/store/mongostore"
	"wink/websocket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wink:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		ServiceName: "wink-api",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})
	ctx := context.Background()
	log.Info(ctx, "starting wink api")

	// ===== STORES =====
	var (
		users    store.UserStore
		messages store.MessageStore
		ping     func(context.Context) error
		db       *database.DB
	)
	switch cfg.App.StoreDriver {
	case "memory":
		log.Warn(ctx, "using in-memory store, data is lost on restart")
		users, messages = memstore.NewUsers(), memstore.NewMessages()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, time.Minute)
		db, err = database.Connect(connectCtx, cfg.Mongo, log)
		if err == nil {
			err = db.EnsureIndexes(connectCtx)
		}
		cancel()
		if err != nil {
			return err
		}
		log.Info(log.WithField(ctx, "database", cfg.Mongo.Database), "mongodb connected")
		users = mongostore.NewUsers(db.Users, cfg.Mongo.Transactions)
		messages = mongostore.NewMessages(db.Messages)
		ping = db.Ping
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(shutdownCtx); err != nil {
			log.Error(ctx, "mongodb disconnect", err)
		}
	}()

	// ===== SERVICES =====
	tokens, err := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return err
	}
	uploader, err := media.New(cfg.Cloudinary)
	if err != nil {
		return err
	}
	if !cfg.Cloudinary.Enabled() {
		log.Warn(ctx, "CLOUDINARY_URL not set, image uploads disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := websocket.NewHub(m, log)
	defer hub.Shutdown()

	h := handlers.New(handlers.Services{
		Auth:      services.NewAuthService(users, tokens, cfg.App.BcryptCost),
		Matching:  services.NewMatchingService(users, hub, m, log, services.NotifyBoth(cfg.Match.NotifyBoth)),
		Discovery: services.NewDiscoveryService(users, services.DefaultDiscoveryLimit),
		Inbox:     services.NewInboxService(users, messages),
		Messages:  services.NewMessageService(messages, m),
		Profile:   services.NewProfileService(users, uploader),
	}, log, cfg.App.StoreTimeout)

	// ===== GIN MODE =====
	if cfg.App.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := routes.SetupRouter(routes.Deps{
		Handler:   h,
		Tokens:    tokens,
		CORS:      cfg.CORS,
		Log:       log,
		WebSocket: websocket.NewHandler(hub, tokens, cfg.CORS.Allowed, log),
		Ping:      ping,
		Gatherer:  reg,
	})

	// ===== SERVER CONFIG =====
	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(log.WithField(ctx, "port", cfg.App.Port), "server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	case sig := <-quit:
		log.Info(log.WithField(ctx, "signal", sig.String()), "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "forced shutdown", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
