package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeSyncStarted     MessageType = "sync.started"
	TypeSyncCompleted   MessageType = "sync.completed"
	TypeSyncFailed      MessageType = "sync.failed"
	TypeImportCompleted MessageType = "import.completed"
	TypeNotification    MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong MessageType = "pong"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncStartedPayload is the payload for sync.started events.
type SyncStartedPayload struct {
	SyncType string `json:"sync_type"`
}

// SyncCompletedPayload is the payload for sync.completed events.
type SyncCompletedPayload struct {
	SyncType     string `json:"sync_type"`
	Status       string `json:"status"`
	Created      int    `json:"created"`
	Updated      int    `json:"updated"`
	RecordErrors int    `json:"record_errors"`
}

// SyncFailedPayload is the payload for sync.failed events.
type SyncFailedPayload struct {
	SyncType string `json:"sync_type"`
	Message  string `json:"message"`
}

// ImportCompletedPayload is the payload for import.completed events.
type ImportCompletedPayload struct {
	PropertiesCount int `json:"properties_count"`
	RowErrors       int `json:"row_errors"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level   string `json:"level"` // info, warning, error, success
	Title   string `json:"title"`
	Message string `json:"message"`
}
