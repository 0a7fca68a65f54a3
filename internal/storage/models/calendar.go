package models

import (
	"time"
)

// CalendarEvent represents a parsed event from an iCal feed.
type CalendarEvent struct {
	UID     string    `json:"uid"`
	Summary string    `json:"summary"`
	Status  string    `json:"status,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}
