// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/stayflow-pms/backend/internal/api/middleware"
	"github.com/stayflow-pms/backend/internal/storage"
	"github.com/stayflow-pms/backend/internal/storage/models"
	syncengine "github.com/stayflow-pms/backend/internal/sync"
)

// TriggerSyncAll kicks off a full sync in the background and returns
// immediately. Progress and results are pushed over the websocket.
func TriggerSyncAll(orchestrator *syncengine.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if _, err := orchestrator.SyncAll(context.Background()); err != nil {
				log.Printf("Background sync failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "syncing"})
	}
}

// SyncProperties runs a property sync synchronously and returns its result.
func SyncProperties(orchestrator *syncengine.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSyncResult(w)(orchestrator.SyncProperties(r.Context()))
	}
}

// SyncReservations runs a reservation sync synchronously and returns its result.
func SyncReservations(orchestrator *syncengine.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSyncResult(w)(orchestrator.SyncReservations(r.Context()))
	}
}

func writeSyncResult(w http.ResponseWriter) func(*syncengine.Result, error) {
	return func(result *syncengine.Result, err error) {
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusBadGateway)
		}
		json.NewEncoder(w).Encode(result)
	}
}

// LatestSyncLog returns the most recent sync log row.
func LatestSyncLog(syncLogs *storage.SyncLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := syncLogs.Latest(r.Context())
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "No sync has run yet")
			return
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query sync log")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entry)
	}
}

// ListSyncLogs returns recent sync log rows, newest first.
func ListSyncLogs(syncLogs *storage.SyncLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, err := syncLogs.List(r.Context(), limit)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query sync logs")
			return
		}

		if entries == nil {
			entries = []models.SyncLog{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
