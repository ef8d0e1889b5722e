// Package main provides the entry point for the short-video metadata
// resolution and media relay service.
// @title Grabtok API
// @version 1.0
// @description Resolves short-video page links into structured metadata and relays the resolved media bytes.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key authentication
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grabtok/grabtok/internal/api/handlers"
	"github.com/grabtok/grabtok/internal/api/router"
	"github.com/grabtok/grabtok/internal/config"
	"github.com/grabtok/grabtok/internal/services/cache"
	"github.com/grabtok/grabtok/internal/services/extractor"
	"github.com/grabtok/grabtok/internal/services/fetcher"
	"github.com/grabtok/grabtok/internal/services/relay"
	"github.com/grabtok/grabtok/internal/services/resolver"
	"github.com/grabtok/grabtok/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting grabtok service")

	// Initialize the result cache
	metadataCache := cache.New(cfg.Cache.TTL)

	// Initialize the outbound fetch client
	fetchClient := fetcher.New(&cfg.Fetch)

	// Select the extraction back-end
	var metaExtractor extractor.Extractor
	switch cfg.Extractor.Backend {
	case "api":
		metaExtractor = extractor.NewAPI(cfg.Extractor.APIEndpoint)
	default:
		metaExtractor = extractor.NewPage()
	}
	logger.Infof("Using %s extraction back-end", cfg.Extractor.Backend)

	// Initialize services
	resolverService := resolver.New(metadataCache, fetchClient, metaExtractor)
	mediaRelay := relay.New(fetchClient)

	// Initialize handlers
	videoHandler := handlers.NewVideoHandler(resolverService, mediaRelay)
	healthHandler := handlers.NewHealthHandler(metadataCache)

	// Initialize router
	r := router.NewRouter(cfg, videoHandler, healthHandler)

	server := &http.Server{
		Addr:    r.Addr(),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		logger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shut down server cleanly: %v", err)
	}

	metadataCache.Close()

	logger.Info("Server shutdown complete")
}
