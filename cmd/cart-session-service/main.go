package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lunashop/cart-go/internal/auth"
	"github.com/lunashop/cart-go/internal/cache"
	"github.com/lunashop/cart-go/internal/config"
	"github.com/lunashop/cart-go/internal/db"
	"github.com/lunashop/cart-go/internal/events"
	"github.com/lunashop/cart-go/internal/guest"
	httpserver "github.com/lunashop/cart-go/internal/http"
	"github.com/lunashop/cart-go/internal/logging"
	"github.com/lunashop/cart-go/internal/remote"
	"github.com/lunashop/cart-go/internal/session"
	cartsync "github.com/lunashop/cart-go/internal/sync"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	logger := logging.Init()
	cfg := config.Load()

	if err := db.RunMigrations(cfg.DBDSN, logger); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	database := db.MustOpen(cfg.DBDSN)
	defer database.Close()
	snapshots := guest.NewSnapshotRepository(database)

	rabbitConn := events.MustDialRabbit()
	defer rabbitConn.Close()

	sequenceRepo := events.NewSequenceRepository(database)
	publisher, err := events.NewRabbitCartEventsPublisher(rabbitConn, sequenceRepo)
	if err != nil {
		log.Fatalf("create cart events publisher: %v", err)
	}

	client, err := remote.NewClient(cfg.CartAPIURL,
		&http.Client{Timeout: cfg.UpstreamTimeout},
		auth.NewStaticTokenSource(cfg.ServiceToken))
	if err != nil {
		log.Fatalf("create cart api client: %v", err)
	}
	cartClient := remote.NewCartClient(client)

	cartCache := cache.NewRedisCartCache(cfg.RedisAddr, cfg.CacheTTL)

	coordinator := cartsync.NewCoordinator(snapshots, cartClient, publisher, logger)

	manager := session.NewManager(session.Deps{
		Snapshots:  snapshots,
		Remote:     cartClient,
		Reconciler: coordinator,
		Cache:      cartCache,
		Logger:     logger,
	})

	handler := httpserver.NewRouter(httpserver.NewManagerResolver(manager), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cart-session-service listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("publisher close", "error", err)
	}
}
