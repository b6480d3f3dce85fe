package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	"github.com/aylinkaden/HotelReservationGo/pkg/database"
	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
)

const detailColumns = `id, reservation_id, seating_preference, occasion, dietary_requirements, special_requests, created_at, updated_at`

// DetailRepository implements repository.DetailRepository using PostgreSQL.
type DetailRepository struct {
	pool database.DBTX
}

// NewDetailRepository creates a new PostgreSQL-backed detail repository.
func NewDetailRepository(pool database.DBTX) *DetailRepository {
	return &DetailRepository{pool: pool}
}

// Upsert inserts or replaces the detail record for a reservation. A
// reservation has at most one detail, keyed by reservation_id.
func (r *DetailRepository) Upsert(ctx context.Context, d *domain.ReservationDetail) error {
	query := `
		INSERT INTO reservation_details (id, reservation_id, seating_preference, occasion, dietary_requirements, special_requests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (reservation_id) DO UPDATE SET
			seating_preference = EXCLUDED.seating_preference,
			occasion = EXCLUDED.occasion,
			dietary_requirements = EXCLUDED.dietary_requirements,
			special_requests = EXCLUDED.special_requests,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.ReservationID,
		d.SeatingPreference,
		d.Occasion,
		d.DietaryRequirements,
		d.SpecialRequests,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert reservation detail: %w", err)
	}

	return nil
}

// GetByReservationID retrieves the detail for a single reservation.
func (r *DetailRepository) GetByReservationID(ctx context.Context, reservationID string) (*domain.ReservationDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM reservation_details WHERE reservation_id = $1`

	var d domain.ReservationDetail
	err := r.pool.QueryRow(ctx, query, reservationID).Scan(
		&d.ID,
		&d.ReservationID,
		&d.SeatingPreference,
		&d.Occasion,
		&d.DietaryRequirements,
		&d.SpecialRequests,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("reservation detail", reservationID)
		}
		return nil, fmt.Errorf("scan reservation detail: %w", err)
	}

	return &d, nil
}

// GetByReservationIDs batch-loads details for the given reservations in a
// single query, keyed by reservation ID.
func (r *DetailRepository) GetByReservationIDs(ctx context.Context, reservationIDs []string) (map[string]*domain.ReservationDetail, error) {
	details := make(map[string]*domain.ReservationDetail, len(reservationIDs))
	if len(reservationIDs) == 0 {
		return details, nil
	}

	query := `SELECT ` + detailColumns + ` FROM reservation_details WHERE reservation_id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, reservationIDs)
	if err != nil {
		return nil, fmt.Errorf("batch load reservation details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.ReservationDetail
		if err := rows.Scan(
			&d.ID,
			&d.ReservationID,
			&d.SeatingPreference,
			&d.Occasion,
			&d.DietaryRequirements,
			&d.SpecialRequests,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation detail row: %w", err)
		}
		details[d.ReservationID] = &d
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation detail rows: %w", err)
	}

	return details, nil
}
