package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // errors package is needed to detect a closed server
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"storefront/internal/api"        // HTTP handlers and router
	"storefront/internal/config"     // Configuration
	"storefront/internal/db"         // Database connection, migration and seed
	"storefront/internal/events"     // Order event publisher
	"storefront/internal/middleware" // Rate limiter
	"storefront/internal/service"    // Use cases
	"storefront/internal/session"    // Session boundary

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	log := logrus.StandardLogger()
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode) // Set Mode to Release if in production
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// Connect to the database, migrate and seed the catalog on first run
	gdb, err := db.Open(cfg.MySQLDSN(), cfg.IsProd)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb, log); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	if _, err := db.SeedProducts(gdb, log); err != nil {
		log.Fatalf("failed to seed products: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	defer redisClient.Close()
	// Test Redis connection, sessions cannot work without it
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	// Order events are optional
	var publisher service.OrderPublisher
	if cfg.RabbitMQURL != "" {
		rp, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.OrderEventsQueue)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer rp.Close()
		publisher = rp
		log.WithField("queue", cfg.OrderEventsQueue).Info("Publishing order events")
	}

	admin, err := service.NewAdminAccount(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}
	if cfg.IsProd && cfg.AdminPassword == "Password123" {
		log.Warn("ADMIN_PASSWORD is the default value")
	}

	sessionStore := session.NewStore(redisClient, cfg.SessionTTL)
	sessions := session.NewManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL, cfg.SessionSecure, cfg.CookieDomain, log)
	catalog := service.NewCatalogService(gdb, redisClient, cfg.CatalogCacheTTL, log)
	carts := service.NewCartService(gdb, sessionStore, catalog, log)

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, log)
	limiter.StartCleanup(10*time.Minute, stop)

	r := api.NewRouter(api.Deps{
		Auth:        service.NewAuthService(gdb, admin, log),
		Catalog:     catalog,
		Carts:       carts,
		Checkout:    service.NewCheckoutService(gdb, carts, redisClient, publisher, log),
		Sessions:    sessions,
		AuthLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins(),
		IsProd:      cfg.IsProd,
		Logger:      log,
	})
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		log.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt and drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
