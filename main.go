package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"livescore-service/config"
	"livescore-service/database"
	"livescore-service/services"
	"livescore-service/thesports"
	"livescore-service/web"
)

func main() {
	log.Println("Starting livescore service...")

	// .env is optional; real deployments use environment variables.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database connected and migrated")

	store := database.NewMatchStore(db)

	// Upstream REST client serves both the reference lists and the
	// polled diary.
	api := thesports.NewClientWithConfig(thesports.Config{
		BaseURL: cfg.APIBaseURL,
		User:    cfg.TheSportsUser,
		Secret:  cfg.TheSportsSecret,
	})

	cache := services.NewReferenceCache(api, cfg.CacheTTL)
	enricher := services.NewEnricher(cache)
	reconciler := services.NewReconciler(store, enricher)

	wsHub := web.NewHub()
	go wsHub.Run()
	reconciler.SetBroadcaster(wsHub)

	if cfg.AMQPURL != "" {
		publisher, err := services.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("AMQP fanout disabled: %v", err)
		} else {
			defer publisher.Close()
			reconciler.SetPublisher(publisher)
			log.Printf("AMQP fanout enabled on exchange %q", cfg.AMQPExchange)
		}
	}

	// Push path: realtime feed into the reconciler. Degrades to
	// poll-only mode when credentials are missing or the broker is
	// unreachable.
	feed := services.NewFeedSubscriber(cfg, reconciler)
	if err := feed.Start(); err != nil {
		log.Printf("Feed subscriber error: %v", err)
	}

	// Poll path: scheduled diary sync as backfill and recovery.
	syncer := services.NewPollingSyncer(api, cache, reconciler, cfg.CompetitionAllowlist)
	syncStop := make(chan struct{})
	go syncer.Run(cfg.LiveSyncInterval, cfg.DailySyncInterval, syncStop)
	log.Printf("Polling syncer started (live %v, daily %v)", cfg.LiveSyncInterval, cfg.DailySyncInterval)

	server := web.NewServer(cfg, store, cache, enricher, syncer, wsHub)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Web server error: %v", err)
		}
	}()
	log.Printf("Web server started on port %s", cfg.Port)

	log.Println("Service is running. Press Ctrl+C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down service...")

	close(syncStop)
	feed.Stop()
	server.Stop()

	log.Println("Service stopped")
}
