package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stayflow-pms/backend/internal/storage/models"
)

// SyncLogRepository provides access to the append-only sync audit log.
// It exposes insert and read operations only; rows are never mutated.
type SyncLogRepository struct {
	BaseRepository
}

// NewSyncLogRepository creates a new sync log repository.
func NewSyncLogRepository(db *DB) *SyncLogRepository {
	return &SyncLogRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Insert appends a sync log row.
func (r *SyncLogRepository) Insert(ctx context.Context, entry *models.SyncLog) error {
	if entry.ID == "" {
		entry.ID = GenerateID()
	}
	if entry.SyncDate.IsZero() {
		entry.SyncDate = r.Now()
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO sync_logs (id, sync_type, status, records_count, error_message, sync_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.SyncType, entry.Status, entry.RecordsCount, entry.ErrorMessage, entry.SyncDate)

	if err != nil {
		return fmt.Errorf("inserting sync log: %w", err)
	}

	return nil
}

// Latest returns the most recent sync log row, or ErrNotFound if the log is empty.
func (r *SyncLogRepository) Latest(ctx context.Context) (*models.SyncLog, error) {
	return r.latest(ctx, `
		SELECT id, sync_type, status, records_count, error_message, sync_date
		FROM sync_logs ORDER BY sync_date DESC, id DESC LIMIT 1
	`)
}

// LatestByType returns the most recent sync log row for a sync type.
func (r *SyncLogRepository) LatestByType(ctx context.Context, syncType string) (*models.SyncLog, error) {
	return r.latest(ctx, `
		SELECT id, sync_type, status, records_count, error_message, sync_date
		FROM sync_logs WHERE sync_type = ? ORDER BY sync_date DESC, id DESC LIMIT 1
	`, syncType)
}

// List returns the most recent sync log rows, newest first.
func (r *SyncLogRepository) List(ctx context.Context, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, sync_type, status, records_count, error_message, sync_date
		FROM sync_logs ORDER BY sync_date DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncLog
	for rows.Next() {
		var e models.SyncLog
		if err := rows.Scan(&e.ID, &e.SyncType, &e.Status, &e.RecordsCount, &e.ErrorMessage, &e.SyncDate); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *SyncLogRepository) latest(ctx context.Context, query string, args ...any) (*models.SyncLog, error) {
	e := &models.SyncLog{}

	err := r.DB().QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.SyncType, &e.Status, &e.RecordsCount, &e.ErrorMessage, &e.SyncDate,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying sync log: %w", err)
	}

	return e, nil
}
