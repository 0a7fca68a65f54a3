package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/stayflow-pms/backend/internal/pms"
	"github.com/stayflow-pms/backend/internal/storage"
	"github.com/stayflow-pms/backend/internal/storage/models"
	"github.com/stayflow-pms/backend/internal/websocket"
)

// reservationWindow is how far back the reservation pull reaches.
const reservationWindow = 30 * 24 * time.Hour

// Result summarizes one sync run.
type Result struct {
	SyncType string    `json:"sync_type"`
	Status   string    `json:"status"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Errors   []string  `json:"errors,omitempty"`
	SyncedAt time.Time `json:"synced_at"`
}

// Count returns the number of records touched by the run.
func (r *Result) Count() int {
	return r.Created + r.Updated
}

// FullResult is the combined outcome of a property + reservation sync.
type FullResult struct {
	Properties   *Result `json:"properties"`
	Reservations *Result `json:"reservations"`
	Status       string  `json:"status"`
}

// Orchestrator pulls remote property and reservation collections and
// reconciles them into the local store. Runs of the same sync type are
// serialized internally; every run writes one SyncLog row whatever the
// outcome.
type Orchestrator struct {
	client       *pms.Client
	properties   *storage.PropertyRepository
	reservations *storage.ReservationRepository
	syncLogs     *storage.SyncLogRepository
	broadcaster  *websocket.EventBroadcaster

	propMu sync.Mutex
	resMu  sync.Mutex

	// now is swappable for tests
	now func() time.Time
}

// NewOrchestrator creates a new sync orchestrator. The hub may be nil when
// no websocket clients are served (CLI, tests).
func NewOrchestrator(
	client *pms.Client,
	properties *storage.PropertyRepository,
	reservations *storage.ReservationRepository,
	syncLogs *storage.SyncLogRepository,
	hub *websocket.Hub,
) *Orchestrator {
	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Orchestrator{
		client:       client,
		properties:   properties,
		reservations: reservations,
		syncLogs:     syncLogs,
		broadcaster:  broadcaster,
		now:          time.Now,
	}
}

// SyncProperties pulls all active remote listings and upserts them by
// remote id. A bad record is recorded and skipped, never aborting the
// batch. Re-running against unchanged remote data is idempotent.
func (o *Orchestrator) SyncProperties(ctx context.Context) (*Result, error) {
	o.propMu.Lock()
	defer o.propMu.Unlock()

	result := &Result{SyncType: models.SyncTypeProperties, SyncedAt: o.now().UTC()}
	o.broadcastStarted(result.SyncType)

	listings, err := o.client.ListActiveListings(ctx)
	if err != nil {
		return o.finishRun(ctx, result, fmt.Errorf("listing properties: %w", err))
	}

	syncedAt := result.SyncedAt
	for _, listing := range listings {
		mapped, err := mapListing(listing)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			log.Printf("Property sync: skipping record: %v", err)
			continue
		}
		mapped.LastSyncedAt = &syncedAt

		existing, err := o.properties.GetByRemoteID(ctx, mapped.RemoteID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if err := o.properties.Create(ctx, mapped); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.Created++
		case err != nil:
			result.Errors = append(result.Errors, err.Error())
		default:
			mapped.ID = existing.ID
			if err := o.properties.Update(ctx, mapped); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.Updated++
		}
	}

	return o.finishRun(ctx, result, nil)
}

// SyncReservations pulls reservations with a check-in inside the lookback
// window and upserts them by remote id.
func (o *Orchestrator) SyncReservations(ctx context.Context) (*Result, error) {
	o.resMu.Lock()
	defer o.resMu.Unlock()

	result := &Result{SyncType: models.SyncTypeReservations, SyncedAt: o.now().UTC()}
	o.broadcastStarted(result.SyncType)

	since := o.now().UTC().Add(-reservationWindow)
	remote, err := o.client.ListReservationsSince(ctx, since)
	if err != nil {
		return o.finishRun(ctx, result, fmt.Errorf("listing reservations: %w", err))
	}

	propertyIDs := make(map[string]string)

	for _, rr := range remote {
		propertyID, err := o.resolveProperty(ctx, propertyIDs, rr.ListingID)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			log.Printf("Reservation sync: skipping record: %v", err)
			continue
		}

		mapped, err := mapReservation(rr, propertyID)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			log.Printf("Reservation sync: skipping record: %v", err)
			continue
		}

		existing, err := o.reservations.GetByRemoteID(ctx, mapped.RemoteID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if err := o.reservations.Create(ctx, mapped); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.Created++
		case err != nil:
			result.Errors = append(result.Errors, err.Error())
		default:
			mapped.ID = existing.ID
			if err := o.reservations.Update(ctx, mapped); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.Updated++
		}
	}

	return o.finishRun(ctx, result, nil)
}

// SyncAll runs the property sync followed by the reservation sync. The
// combined status is success only when both runs succeed.
func (o *Orchestrator) SyncAll(ctx context.Context) (*FullResult, error) {
	properties, propErr := o.SyncProperties(ctx)
	reservations, resErr := o.SyncReservations(ctx)

	full := &FullResult{
		Properties:   properties,
		Reservations: reservations,
		Status:       models.SyncStatusSuccess,
	}
	if propErr != nil || resErr != nil {
		full.Status = models.SyncStatusError
	}

	if propErr != nil {
		return full, propErr
	}
	return full, resErr
}

// LatestSyncLog returns the most recent sync log row.
func (o *Orchestrator) LatestSyncLog(ctx context.Context) (*models.SyncLog, error) {
	return o.syncLogs.Latest(ctx)
}

// resolveProperty maps a remote listing id to a local property id, caching
// lookups for the duration of the run.
func (o *Orchestrator) resolveProperty(ctx context.Context, cache map[string]string, listingID string) (string, error) {
	if listingID == "" {
		return "", fmt.Errorf("reservation has no listingId")
	}

	if id, ok := cache[listingID]; ok {
		return id, nil
	}

	property, err := o.properties.GetByRemoteID(ctx, listingID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("no local property for listing %s (run a property sync first)", listingID)
	}
	if err != nil {
		return "", fmt.Errorf("looking up listing %s: %w", listingID, err)
	}

	cache[listingID] = property.ID
	return property.ID, nil
}

// finishRun records the SyncLog row for a run and broadcasts its outcome.
// The log row is written whether the run succeeded or failed so the audit
// history is never silently lost.
func (o *Orchestrator) finishRun(ctx context.Context, result *Result, runErr error) (*Result, error) {
	result.Status = models.SyncStatusSuccess
	var errorMessage *string

	if runErr != nil {
		result.Status = models.SyncStatusError
		msg := runErr.Error()
		errorMessage = &msg
	} else if len(result.Errors) > 0 {
		msg := strings.Join(result.Errors, "; ")
		errorMessage = &msg
	}

	entry := &models.SyncLog{
		SyncType:     result.SyncType,
		Status:       result.Status,
		RecordsCount: result.Count(),
		ErrorMessage: errorMessage,
		SyncDate:     result.SyncedAt,
	}
	if err := o.syncLogs.Insert(ctx, entry); err != nil {
		log.Printf("Failed to write sync log for %s run: %v", result.SyncType, err)
	}

	if runErr != nil {
		if o.broadcaster != nil {
			o.broadcaster.BroadcastSyncFailed(result.SyncType, runErr)
		}
		return result, runErr
	}

	if o.broadcaster != nil {
		o.broadcaster.BroadcastSyncCompleted(result.SyncType, result.Status, result.Created, result.Updated, len(result.Errors))
	}
	return result, nil
}

func (o *Orchestrator) broadcastStarted(syncType string) {
	if o.broadcaster != nil {
		o.broadcaster.BroadcastSyncStarted(syncType)
	}
}
