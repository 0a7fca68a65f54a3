package websocket

import (
	"log"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastSyncStarted announces the beginning of a sync run.
func (b *EventBroadcaster) BroadcastSyncStarted(syncType string) {
	b.broadcast(NewMessage(TypeSyncStarted, SyncStartedPayload{SyncType: syncType}))
}

// BroadcastSyncCompleted announces the result of a finished sync run.
func (b *EventBroadcaster) BroadcastSyncCompleted(syncType, status string, created, updated, recordErrors int) {
	b.broadcast(NewMessage(TypeSyncCompleted, SyncCompletedPayload{
		SyncType:     syncType,
		Status:       status,
		Created:      created,
		Updated:      updated,
		RecordErrors: recordErrors,
	}))
}

// BroadcastSyncFailed announces a sync run that failed outright.
func (b *EventBroadcaster) BroadcastSyncFailed(syncType string, err error) {
	b.broadcast(NewMessage(TypeSyncFailed, SyncFailedPayload{
		SyncType: syncType,
		Message:  err.Error(),
	}))
}

// BroadcastImportCompleted announces a finished CSV import.
func (b *EventBroadcaster) BroadcastImportCompleted(propertiesCount, rowErrors int) {
	b.broadcast(NewMessage(TypeImportCompleted, ImportCompletedPayload{
		PropertiesCount: propertiesCount,
		RowErrors:       rowErrors,
	}))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:   level,
		Title:   title,
		Message: message,
	}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
