package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "campurent/internal/config"
	api "campurent/internal/http"
	"campurent/internal/metrics"
	"campurent/internal/realtime"
	"campurent/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env.MySQLDSN)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	metrics.Register()

	deps := api.NewDeps(db)
	r := api.NewRouter(env, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change-feed watcher: push fan-out degrades to nothing when the broker
	// is unavailable; the REST API stays up either way.
	broadcaster := realtime.NewBroadcaster(deps.Registry, deps.Admin)
	watcher := realtime.NewWatcher(realtime.WatcherConfig{
		RabbitURL: env.RabbitURL,
		Exchange:  env.EventsExchange,
		Queue:     env.EventsQueue,
	}, broadcaster)
	if err := watcher.Connect(); err != nil {
		log.Printf("realtime watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Printf("realtime watcher stopped: %v", err)
			}
		}()
	}

	// Periodic stale-delivery auto-close.
	go func() {
		interval := time.Duration(env.SweepIntervalMin) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := deps.Delivery.SweepStale(utils.NowUTC()); err != nil {
					log.Printf("stale sweep failed: %v", err)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
