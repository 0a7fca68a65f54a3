package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stayflow-pms/backend/internal/storage/models"
)

// PropertyRepository provides data access for properties.
type PropertyRepository struct {
	BaseRepository
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const propertyColumns = `id, remote_id, name, title, property_type, address, bedrooms, bathrooms,
	       amenities, tags, listing_url, calendar_url, active, last_synced_at, created_at, updated_at`

// Create inserts a new property.
func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	if p.ID == "" {
		p.ID = GenerateID()
	}
	p.CreatedAt = r.Now()
	p.UpdatedAt = p.CreatedAt

	amenities, tags, err := encodeStringLists(p.Amenities, p.Tags)
	if err != nil {
		return err
	}

	_, err = r.DB().ExecContext(ctx, `
		INSERT INTO properties (
			id, remote_id, name, title, property_type, address, bedrooms, bathrooms,
			amenities, tags, listing_url, calendar_url, active, last_synced_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.RemoteID, p.Name, p.Title, p.PropertyType, p.Address, p.Bedrooms, p.Bathrooms,
		amenities, tags, p.ListingURL, p.CalendarURL, p.Active, p.LastSyncedAt, p.CreatedAt, p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}

	return nil
}

// Update updates the mutable fields of an existing property.
func (r *PropertyRepository) Update(ctx context.Context, p *models.Property) error {
	p.UpdatedAt = r.Now()

	amenities, tags, err := encodeStringLists(p.Amenities, p.Tags)
	if err != nil {
		return err
	}

	result, err := r.DB().ExecContext(ctx, `
		UPDATE properties SET
			name = ?, title = ?, property_type = ?, address = ?, bedrooms = ?, bathrooms = ?,
			amenities = ?, tags = ?, listing_url = ?, calendar_url = ?, active = ?,
			last_synced_at = ?, updated_at = ?
		WHERE id = ?
	`,
		p.Name, p.Title, p.PropertyType, p.Address, p.Bedrooms, p.Bathrooms,
		amenities, tags, p.ListingURL, p.CalendarURL, p.Active,
		p.LastSyncedAt, p.UpdatedAt, p.ID,
	)

	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("property %s: %w", p.ID, ErrNotFound)
	}

	return nil
}

// GetByID retrieves a property by its local ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	return scanProperty(row)
}

// GetByRemoteID retrieves a property by its PMS identifier.
func (r *PropertyRepository) GetByRemoteID(ctx context.Context, remoteID string) (*models.Property, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE remote_id = ?`, remoteID)
	return scanProperty(row)
}

// GetByName retrieves a property by its display name (nickname).
func (r *PropertyRepository) GetByName(ctx context.Context, name string) (*models.Property, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE name = ?`, name)
	return scanProperty(row)
}

// List retrieves all properties ordered by name.
func (r *PropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	return r.list(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY name`)
}

// ListActive retrieves all active properties ordered by name.
func (r *PropertyRepository) ListActive(ctx context.Context) ([]models.Property, error) {
	return r.list(ctx, `SELECT `+propertyColumns+` FROM properties WHERE active = 1 ORDER BY name`)
}

// MarkInactive flags a property as inactive. Properties are never deleted.
func (r *PropertyRepository) MarkInactive(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE properties SET active = 0, updated_at = ? WHERE id = ?
	`, r.Now(), id)
	if err != nil {
		return fmt.Errorf("marking property inactive: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("property %s: %w", id, ErrNotFound)
	}

	return nil
}

// Count returns the total number of properties.
func (r *PropertyRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}

func (r *PropertyRepository) list(ctx context.Context, query string, args ...any) ([]models.Property, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		p, err := scanPropertyRow(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}

	return properties, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row *sql.Row) (*models.Property, error) {
	p, err := scanPropertyRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

func scanPropertyRow(row rowScanner) (*models.Property, error) {
	p := &models.Property{}
	var amenities, tags string

	err := row.Scan(
		&p.ID, &p.RemoteID, &p.Name, &p.Title, &p.PropertyType, &p.Address,
		&p.Bedrooms, &p.Bathrooms, &amenities, &tags, &p.ListingURL,
		&p.CalendarURL, &p.Active, &p.LastSyncedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning property: %w", err)
	}

	if err := json.Unmarshal([]byte(amenities), &p.Amenities); err != nil {
		return nil, fmt.Errorf("decoding amenities: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}

	return p, nil
}

// encodeStringLists serializes amenity and tag lists for storage.
// Nil slices are stored as empty arrays so scans round-trip cleanly.
func encodeStringLists(amenities, tags []string) (string, string, error) {
	if amenities == nil {
		amenities = []string{}
	}
	if tags == nil {
		tags = []string{}
	}

	a, err := json.Marshal(amenities)
	if err != nil {
		return "", "", fmt.Errorf("encoding amenities: %w", err)
	}
	t, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("encoding tags: %w", err)
	}

	return string(a), string(t), nil
}

// TouchLastSynced bumps the last-synced timestamp on a property.
func (r *PropertyRepository) TouchLastSynced(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE properties SET last_synced_at = ?, updated_at = ? WHERE id = ?
	`, at, r.Now(), id)
	if err != nil {
		return fmt.Errorf("updating last synced: %w", err)
	}
	return nil
}
