package models

import (
	"time"
)

// SyncLog is an append-only audit record of a sync run. Rows are never
// updated after insert.
type SyncLog struct {
	ID           string    `json:"id"`
	SyncType     string    `json:"sync_type"`
	Status       string    `json:"status"`
	RecordsCount int       `json:"records_count"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	SyncDate     time.Time `json:"sync_date"`
}

// Sync type constants
const (
	SyncTypeProperties   = "properties"
	SyncTypeReservations = "reservations"
	SyncTypeFull         = "full"
)

// Sync outcome constants
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)
