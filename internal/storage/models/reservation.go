package models

import (
	"time"
)

// Reservation represents a booking mirrored from the external PMS.
type Reservation struct {
	ID              string    `json:"id"`
	RemoteID        string    `json:"remote_id"`
	PropertyID      string    `json:"property_id"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email,omitempty"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Status          string    `json:"status"`
	Channel         string    `json:"channel,omitempty"`
	TotalPriceCents int64     `json:"total_price_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Reservation status constants
const (
	ReservationStatusUnknown   = "unknown"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// IsCurrent returns true if the reservation overlaps the given instant.
func (r *Reservation) IsCurrent(now time.Time) bool {
	return !now.Before(r.CheckIn) && now.Before(r.CheckOut)
}
