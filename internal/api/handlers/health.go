package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stayflow-pms/backend/internal/pms"
	"github.com/stayflow-pms/backend/internal/storage"
	syncengine "github.com/stayflow-pms/backend/internal/sync"
	"github.com/stayflow-pms/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	PMSConnected      bool   `json:"pms_connected"`
	PMSMessage        string `json:"pms_message,omitempty"`
	PropertiesCount   int    `json:"properties_count"`
	ReservationsCount int    `json:"reservations_count"`
	ConnectedClients  int    `json:"connected_clients"`
	NextSyncAt        string `json:"next_sync_at,omitempty"`
}

// Status returns a handler that provides system status information,
// including whether the PMS API is reachable with the configured credentials.
func Status(
	client *pms.Client,
	properties *storage.PropertyRepository,
	reservations *storage.ReservationRepository,
	hub *websocket.Hub,
	scheduler *syncengine.Scheduler,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		connected, message := client.HealthCheck(ctx)

		propertiesCount, _ := properties.Count(ctx)
		reservationsCount, _ := reservations.Count(ctx)

		response := StatusResponse{
			PMSConnected:      connected,
			PMSMessage:        message,
			PropertiesCount:   propertiesCount,
			ReservationsCount: reservationsCount,
			ConnectedClients:  hub.ClientCount(),
		}

		if scheduler != nil {
			if next := scheduler.NextRun(); next != nil {
				response.NextSyncAt = next.UTC().Format("2006-01-02T15:04:05Z")
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
