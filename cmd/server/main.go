// Package main is the entry point for the property sync server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stayflow-pms/backend/internal/api"
	"github.com/stayflow-pms/backend/internal/calendar"
	"github.com/stayflow-pms/backend/internal/importer"
	"github.com/stayflow-pms/backend/internal/pms"
	"github.com/stayflow-pms/backend/internal/storage"
	syncengine "github.com/stayflow-pms/backend/internal/sync"
	"github.com/stayflow-pms/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	addr := flag.String("addr", ":8090", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	syncIntervalMin := flag.Int("sync-interval", 60, "Minutes between background syncs (0 disables)")
	importPath := flag.String("import", "", "Import properties from a CSV file and exit")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	// Load .env if present; real env vars win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting property sync server (version: %s)...", version)

	// Initialize database
	dbPath := *dataDir + "/stayflow.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize repositories
	properties := storage.NewPropertyRepository(db)
	reservations := storage.NewReservationRepository(db)
	syncLogs := storage.NewSyncLogRepository(db)

	// One-shot CSV import mode
	if *importPath != "" {
		imp := importer.NewImporter(properties)
		result, err := imp.ImportFile(context.Background(), *importPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d properties (%d row errors)", result.PropertiesCount, len(result.Errors))
		for _, rowErr := range result.Errors {
			log.Printf("  line %d: %s", rowErr.Line, rowErr.Message)
		}
		return
	}

	// Initialize PMS client
	pmsConfig := pms.DefaultConfig()
	if !pmsConfig.HasCredentials() {
		log.Println("Warning: PMS_CLIENT_ID/PMS_CLIENT_SECRET not set; syncs will fail until configured")
	}
	tokens := pms.NewTokenManager(pmsConfig)
	client := pms.NewClient(pmsConfig, tokens)

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	orchestrator := syncengine.NewOrchestrator(client, properties, reservations, syncLogs, hub)
	aggregator := calendar.NewAggregator(properties, reservations)
	imp := importer.NewImporter(properties)

	// Start background sync scheduler
	var scheduler *syncengine.Scheduler
	if *syncIntervalMin > 0 {
		scheduler = syncengine.NewScheduler(orchestrator, *syncIntervalMin)
		if err := scheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start sync scheduler: %v", err)
		}
	}

	// Initialize HTTP router
	router := api.NewRouter(api.Services{
		DB:           db,
		Hub:          hub,
		Client:       client,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
		Aggregator:   aggregator,
		Importer:     imp,
		Properties:   properties,
		Reservations: reservations,
		SyncLogs:     syncLogs,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
