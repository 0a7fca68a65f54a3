// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Property represents a rental property mirrored from the external PMS
// or imported from a CSV export. Properties are never deleted, only
// marked inactive.
type Property struct {
	ID           string     `json:"id"`
	RemoteID     string     `json:"remote_id"`
	Name         string     `json:"name"`
	Title        string     `json:"title,omitempty"`
	PropertyType string     `json:"property_type,omitempty"`
	Address      string     `json:"address,omitempty"`
	Bedrooms     int        `json:"bedrooms"`
	Bathrooms    float64    `json:"bathrooms"`
	Amenities    []string   `json:"amenities"`
	Tags         []string   `json:"tags"`
	ListingURL   string     `json:"listing_url,omitempty"`
	CalendarURL  *string    `json:"calendar_url,omitempty"`
	Active       bool       `json:"active"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasCalendarFeed reports whether the property has an iCal feed URL configured.
func (p *Property) HasCalendarFeed() bool {
	return p.CalendarURL != nil && *p.CalendarURL != ""
}
