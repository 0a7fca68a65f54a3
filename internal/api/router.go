// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"github.com/gorilla/mux"
	"github.com/stayflow-pms/backend/internal/api/handlers"
	"github.com/stayflow-pms/backend/internal/api/middleware"
	"github.com/stayflow-pms/backend/internal/calendar"
	"github.com/stayflow-pms/backend/internal/importer"
	"github.com/stayflow-pms/backend/internal/pms"
	"github.com/stayflow-pms/backend/internal/storage"
	syncengine "github.com/stayflow-pms/backend/internal/sync"
	"github.com/stayflow-pms/backend/internal/websocket"
)

// Services bundles the dependencies the API routes need.
type Services struct {
	DB           *storage.DB
	Hub          *websocket.Hub
	Client       *pms.Client
	Orchestrator *syncengine.Orchestrator
	Scheduler    *syncengine.Scheduler
	Aggregator   *calendar.Aggregator
	Importer     *importer.Importer
	Properties   *storage.PropertyRepository
	Reservations *storage.ReservationRepository
	SyncLogs     *storage.SyncLogRepository
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.Client, s.Properties, s.Reservations, s.Hub, s.Scheduler)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// Sync endpoints
	api.HandleFunc("/sync", handlers.TriggerSyncAll(s.Orchestrator)).Methods("POST")
	api.HandleFunc("/sync/properties", handlers.SyncProperties(s.Orchestrator)).Methods("POST")
	api.HandleFunc("/sync/reservations", handlers.SyncReservations(s.Orchestrator)).Methods("POST")
	api.HandleFunc("/sync/latest", handlers.LatestSyncLog(s.SyncLogs)).Methods("GET")
	api.HandleFunc("/sync/logs", handlers.ListSyncLogs(s.SyncLogs)).Methods("GET")

	// Property endpoints
	api.HandleFunc("/properties", handlers.ListProperties(s.Properties)).Methods("GET")
	api.HandleFunc("/properties/{id}", handlers.GetProperty(s.Properties)).Methods("GET")
	api.HandleFunc("/properties/{id}", handlers.DeactivateProperty(s.Properties)).Methods("DELETE")
	api.HandleFunc("/properties/{id}/reservations", handlers.ListPropertyReservations(s.Properties, s.Reservations)).Methods("GET")
	api.HandleFunc("/properties/{id}/calendar", handlers.PropertyCalendar(s.Aggregator)).Methods("GET")

	// Calendar feed validation
	api.HandleFunc("/calendar/validate", handlers.ValidateCalendarURL(s.Aggregator)).Methods("POST")

	// CSV import
	api.HandleFunc("/import/properties", handlers.ImportProperties(s.Importer, s.Hub)).Methods("POST")

	return r
}
