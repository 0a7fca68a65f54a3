package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/stayflow-pms/backend/internal/api/middleware"
	"github.com/stayflow-pms/backend/internal/calendar"
	"github.com/stayflow-pms/backend/internal/storage"
)

// PropertyCalendar returns the merged iCal + reservation calendar for a
// property. The window defaults to today through six months out.
func PropertyCalendar(aggregator *calendar.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		now := time.Now().UTC()
		from, ok := parseDateParam(r, "from", now.AddDate(0, 0, -1).Truncate(24*time.Hour))
		if !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid 'from' date")
			return
		}
		to, ok := parseDateParam(r, "to", from.AddDate(0, 6, 0))
		if !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid 'to' date")
			return
		}
		if !to.After(from) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "'to' must be after 'from'")
			return
		}

		events, err := aggregator.PropertyCalendar(r.Context(), id, from, to)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to build calendar")
			return
		}

		if events == nil {
			events = []calendar.Event{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

// ValidateCalendarURL checks a candidate iCal feed URL and reports a
// structured verdict. The response is always 200; failures are expressed
// in the result body.
func ValidateCalendarURL(aggregator *calendar.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		result := aggregator.ValidateFeedURL(r.Context(), req.URL)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// parseDateParam reads a query parameter as a date (YYYY-MM-DD) or RFC 3339
// timestamp, returning the default when absent.
func parseDateParam(r *http.Request, name string, defaultValue time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, true
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}

	return time.Time{}, false
}
