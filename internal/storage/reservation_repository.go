package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stayflow-pms/backend/internal/storage/models"
)

// ReservationRepository provides data access for reservations.
type ReservationRepository struct {
	BaseRepository
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const reservationColumns = `id, remote_id, property_id, guest_name, guest_email, check_in, check_out,
	       status, channel, total_price_cents, created_at, updated_at`

// Create inserts a new reservation.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = GenerateID()
	}
	res.CreatedAt = r.Now()
	res.UpdatedAt = res.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO reservations (
			id, remote_id, property_id, guest_name, guest_email, check_in, check_out,
			status, channel, total_price_cents, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.ID, res.RemoteID, res.PropertyID, res.GuestName, res.GuestEmail,
		res.CheckIn, res.CheckOut, res.Status, res.Channel, res.TotalPriceCents,
		res.CreatedAt, res.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}

	return nil
}

// Update updates the mutable fields of an existing reservation.
func (r *ReservationRepository) Update(ctx context.Context, res *models.Reservation) error {
	res.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE reservations SET
			property_id = ?, guest_name = ?, guest_email = ?, check_in = ?, check_out = ?,
			status = ?, channel = ?, total_price_cents = ?, updated_at = ?
		WHERE id = ?
	`,
		res.PropertyID, res.GuestName, res.GuestEmail, res.CheckIn, res.CheckOut,
		res.Status, res.Channel, res.TotalPriceCents, res.UpdatedAt, res.ID,
	)

	if err != nil {
		return fmt.Errorf("updating reservation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("reservation %s: %w", res.ID, ErrNotFound)
	}

	return nil
}

// GetByRemoteID retrieves a reservation by its PMS identifier.
func (r *ReservationRepository) GetByRemoteID(ctx context.Context, remoteID string) (*models.Reservation, error) {
	res := &models.Reservation{}

	err := r.DB().QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE remote_id = ?`, remoteID,
	).Scan(
		&res.ID, &res.RemoteID, &res.PropertyID, &res.GuestName, &res.GuestEmail,
		&res.CheckIn, &res.CheckOut, &res.Status, &res.Channel, &res.TotalPriceCents,
		&res.CreatedAt, &res.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying reservation: %w", err)
	}

	return res, nil
}

// ListByProperty retrieves all reservations for a property ordered by check-in.
func (r *ReservationRepository) ListByProperty(ctx context.Context, propertyID string) ([]models.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE property_id = ? ORDER BY check_in`,
		propertyID)
}

// ListByPropertyBetween retrieves reservations for a property that overlap
// the [from, to) window, ordered by check-in.
func (r *ReservationRepository) ListByPropertyBetween(ctx context.Context, propertyID string, from, to time.Time) ([]models.Reservation, error) {
	return r.list(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE property_id = ? AND check_in < ? AND check_out > ?
		ORDER BY check_in
	`, propertyID, to, from)
}

// Count returns the total number of reservations.
func (r *ReservationRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting reservations: %w", err)
	}
	return n, nil
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(
			&res.ID, &res.RemoteID, &res.PropertyID, &res.GuestName, &res.GuestEmail,
			&res.CheckIn, &res.CheckOut, &res.Status, &res.Channel, &res.TotalPriceCents,
			&res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}
