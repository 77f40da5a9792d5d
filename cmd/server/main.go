package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resource_hub/internal/api"
	"resource_hub/internal/app/service"
	"resource_hub/internal/common/security"
	"resource_hub/internal/domain/repository"
	"resource_hub/internal/metrics"
	"resource_hub/internal/platform/config"
	"resource_hub/internal/platform/database"
	"resource_hub/internal/platform/media"
	"resource_hub/internal/platform/tokencache"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize Token Service
	tokens := security.NewTokenService(cfg)

	// 3. Initialize Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}
	log.Println("Migrations applied.")

	// 4. Initialize Token Cache (redis)
	cache, err := tokencache.Connect(cfg)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer cache.Close()
	log.Println("Redis connected.")

	// 5. Initialize Media Store (S3)
	mediaStore, err := media.NewS3Store(cfg)
	if err != nil {
		log.Fatalf("Media store init failed: %v", err)
	}

	// 6. Initialize Repositories
	adminRepo := repository.NewPgAdminRepository(db)
	userRepo := repository.NewPgUserRepository(db)
	resourceRepo := repository.NewPgResourceRepository(db)

	// 7. Initialize Services
	identityService := service.NewIdentityService(adminRepo, userRepo, tokens, cache, cfg.BcryptCost, cfg.JWTExp)
	resourceService := service.NewResourceService(resourceRepo, mediaStore, cfg.MediaBaseDir)

	// 8. Initialize Router & HTTP Server
	collector := metrics.NewCollector()
	router := api.NewRouter(cfg, tokens, identityService, resourceService, collector)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
