package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chorus/social-service/config"
	"chorus/social-service/db"
	"chorus/social-service/handlers"
	"chorus/social-service/middleware"
	"chorus/social-service/services"
	"chorus/social-service/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	logger := utils.NewLogger(cfg.Environment)

	// Connect to database
	database, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Stores and services
	userStore := db.NewUserStore(database)
	tokens := services.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	registry := services.NewPresenceRegistry()

	var (
		gatewayOpts []services.GatewayOption
		cluster     handlers.ClusterPresence
	)
	if cfg.RedisURL != "" {
		redisClient, err := services.NewRedisClient(context.Background(), cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisClient.Close()

		mirror := services.NewRedisPresence(redisClient, cfg.PresenceTTL, uuid.NewString(), logger)
		gatewayOpts = append(gatewayOpts, services.WithPresenceMirror(mirror, cfg.PresenceTTL/2))
		cluster = mirror
		logger.Info("Presence mirror enabled", "ttl", cfg.PresenceTTL)
	}

	gateway := services.NewGateway(registry, logger, gatewayOpts...)
	userService := services.NewUserService(userStore, tokens, logger)
	postService := services.NewPostService(db.NewPostStore(database), userStore, logger)
	messageService := services.NewMessageService(db.NewMessageStore(database), userStore, gateway, logger)

	guard := middleware.NewSessionGuard(tokens, userService, cfg.CookieName, logger)

	wsOpts := handlers.WebSocketOptions{
		AllowedOrigin: cfg.CORSOrigin,
		SendBuffer:    cfg.WSSendBuffer,
	}
	if cfg.RealtimeRequireToken {
		wsOpts.Verifier = guard
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Router{
		Logger:     logger,
		Guard:      guard,
		CORSOrigin: cfg.CORSOrigin,
		Users: handlers.NewUserHandler(userService, handlers.CookieSettings{
			Name:   cfg.CookieName,
			MaxAge: cfg.TokenTTL,
			Secure: cfg.CookieSecure,
		}, logger),
		Posts:     handlers.NewPostHandler(postService, logger),
		Messages:  handlers.NewMessageHandler(messageService, logger),
		Presence:  handlers.NewPresenceHandler(gateway, cluster, logger),
		WebSocket: handlers.NewWebSocketHandler(gateway, wsOpts, logger),
		Online:    registry.Len,
	})

	// Start realtime gateway
	gatewayCtx, stopGateway := context.WithCancel(context.Background())
	gatewayDone := make(chan struct{})
	go func() {
		defer close(gatewayDone)
		gateway.Run(gatewayCtx)
	}()

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting social service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; the gateway
	// closes them.
	stopGateway()
	select {
	case <-gatewayDone:
	case <-ctx.Done():
		logger.Warn("Realtime gateway did not stop in time")
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server exited")
}
