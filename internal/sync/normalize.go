// Package sync reconciles remote PMS records into the local store.
package sync

import (
	"fmt"
	"math"
	"strings"

	"github.com/stayflow-pms/backend/internal/pms"
	"github.com/stayflow-pms/backend/internal/storage/models"
)

// mapListing converts a remote listing into the local property shape.
// It fails closed: a listing without a remote identifier or any usable
// name is rejected rather than silently defaulted, so upstream schema
// drift surfaces as a per-record error instead of bad rows.
func mapListing(l pms.Listing) (*models.Property, error) {
	if l.ID == "" {
		return nil, fmt.Errorf("listing has no _id")
	}

	name := strings.TrimSpace(l.Nickname)
	if name == "" {
		name = strings.TrimSpace(l.Title)
	}
	if name == "" {
		return nil, fmt.Errorf("listing %s has neither nickname nor title", l.ID)
	}

	p := &models.Property{
		RemoteID:     l.ID,
		Name:         name,
		Title:        strings.TrimSpace(l.Title),
		PropertyType: l.PropertyType,
		Address:      strings.TrimSpace(l.Address.Full),
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		Amenities:    l.Amenities,
		Tags:         l.Tags,
		ListingURL:   l.ListingURL,
		Active:       true,
	}

	if url := strings.TrimSpace(l.ICalURL); url != "" {
		p.CalendarURL = &url
	}

	return p, nil
}

// mapReservation converts a remote reservation into the local shape,
// resolving the owning property through its remote listing id. Missing
// identifiers or dates fail closed; guest name, status, and price are
// normalized with explicit defaults.
func mapReservation(r pms.RemoteReservation, propertyID string) (*models.Reservation, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("reservation has no _id")
	}
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return nil, fmt.Errorf("reservation %s is missing check-in or check-out", r.ID)
	}

	return &models.Reservation{
		RemoteID:        r.ID,
		PropertyID:      propertyID,
		GuestName:       normalizeGuestName(r.Guest.FullName, r.Guest.FirstName, r.Guest.LastName),
		GuestEmail:      strings.TrimSpace(r.Guest.Email),
		CheckIn:         r.CheckIn,
		CheckOut:        r.CheckOut,
		Status:          normalizeStatus(r.Status),
		Channel:         r.Source,
		TotalPriceCents: toMinorUnits(r.Money.TotalPrice),
	}, nil
}

// normalizeGuestName prefers the full name, falls back to first+last,
// and defaults to "Unknown Guest" when nothing usable remains.
func normalizeGuestName(full, first, last string) string {
	name := strings.TrimSpace(full)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	}
	if name == "" {
		return "Unknown Guest"
	}
	return name
}

// normalizeStatus lower-cases the remote status and defaults to "unknown".
func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return models.ReservationStatusUnknown
	}
	return status
}

// toMinorUnits converts a major-unit amount to integer minor units.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
