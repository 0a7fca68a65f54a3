package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stayflow-pms/backend/internal/api/middleware"
	"github.com/stayflow-pms/backend/internal/storage"
	"github.com/stayflow-pms/backend/internal/storage/models"
)

// ListProperties returns all properties, or only active ones with ?active=true.
func ListProperties(properties *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			result []models.Property
			err    error
		)

		if r.URL.Query().Get("active") == "true" {
			result, err = properties.ListActive(r.Context())
		} else {
			result, err = properties.List(r.Context())
		}

		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query properties")
			return
		}

		if result == nil {
			result = []models.Property{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// GetProperty returns a single property by ID.
func GetProperty(properties *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		property, err := properties.GetByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query property")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(property)
	}
}

// ListPropertyReservations returns a property's reservations ordered by check-in.
func ListPropertyReservations(properties *storage.PropertyRepository, reservations *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if _, err := properties.GetByID(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
				return
			}
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query property")
			return
		}

		result, err := reservations.ListByProperty(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query reservations")
			return
		}

		if result == nil {
			result = []models.Reservation{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// DeactivateProperty marks a property inactive. Properties are never deleted.
func DeactivateProperty(properties *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		err := properties.MarkInactive(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to deactivate property")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
