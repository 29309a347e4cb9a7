// Command main is the entry point for the Forgeline backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forgeline/internal/bootstrap"
	"forgeline/internal/config"
	"forgeline/internal/observability"
	"forgeline/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Tracing (optional)
	if cfg.TracingEnabled {
		shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
			Enabled:      true,
			Exporter:     cfg.TracingExport,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: cfg.SamplerRatio,
			ServiceName:  "forgeline-api",
			Environment:  cfg.Env,
		})
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	// Connect stores, load translations, build the initial content index
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	rt, err := bootstrap.InitRuntime(rootCtx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Library, rt.Translator)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Rebuild the index when content files change
	if cfg.WatchContent {
		go func() {
			if err := rt.Library.Watch(rootCtx, cfg.ContentDir); err != nil {
				log.Printf("Content watcher stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		rootCancel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
