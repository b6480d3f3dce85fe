package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	"github.com/aylinkaden/HotelReservationGo/internal/repository"
	"github.com/aylinkaden/HotelReservationGo/pkg/database"
	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
)

const reservationColumns = `id, user_id, guest_name, contact_phone, contact_email, expected_arrival, table_size, status, version, created_at, updated_at`

// ReservationRepository implements repository.ReservationRepository using PostgreSQL.
type ReservationRepository struct {
	pool database.DBTX
}

// NewReservationRepository creates a new PostgreSQL-backed reservation repository.
func NewReservationRepository(pool database.DBTX) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Create inserts a new reservation.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `
		INSERT INTO reservations (id, user_id, guest_name, contact_phone, contact_email, expected_arrival, table_size, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	ctx, end := database.TraceQuery(ctx, "CreateReservation", query)
	_, err := r.pool.Exec(ctx, query,
		res.ID,
		res.UserID,
		res.GuestName,
		res.ContactPhone,
		res.ContactEmail,
		res.ExpectedArrival,
		res.TableSize,
		res.Status,
		res.Version,
		res.CreatedAt,
		res.UpdatedAt,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

// GetByID retrieves a reservation by its ID.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("reservation", id)
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}

	return res, nil
}

// ListByOwner returns all reservations created by the given user, ordered by
// expected arrival ascending.
func (r *ReservationRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1 ORDER BY expected_arrival ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by owner: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// List returns reservations matching the given filter, soonest arrival first. The date
// filter matches expected arrivals within the UTC calendar day.
func (r *ReservationRepository) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Date != nil {
		dayStart := filter.Date.UTC().Truncate(24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)
		conditions = append(conditions, fmt.Sprintf("expected_arrival >= $%d AND expected_arrival < $%d", argIndex, argIndex+1))
		args = append(args, dayStart, dayEnd)
		argIndex += 2
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM reservations %s ORDER BY expected_arrival ASC`, reservationColumns, whereClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// UpdateFields applies the given fields to the reservation if its stored
// version matches expectedVersion. The version check and the write happen in a
// single statement so concurrent writers cannot interleave between them.
func (r *ReservationRepository) UpdateFields(ctx context.Context, id string, fields repository.UpdateFields, expectedVersion int) (*domain.Reservation, error) {
	query := `
		UPDATE reservations
		SET expected_arrival = COALESCE($3, expected_arrival),
			table_size = COALESCE($4, table_size),
			version = version + 1,
			updated_at = $5
		WHERE id = $1 AND version = $2
		RETURNING ` + reservationColumns

	ctx, end := database.TraceQuery(ctx, "UpdateReservationFields", query)
	res, err := scanReservation(r.pool.QueryRow(ctx, query, id, expectedVersion, fields.ExpectedArrival, fields.TableSize, time.Now().UTC()))
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMiss(ctx, id)
		}
		return nil, fmt.Errorf("update reservation: %w", err)
	}

	return res, nil
}

// UpdateStatus transitions the reservation to the given status if its stored
// version matches expectedVersion.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status string, expectedVersion int) (*domain.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $3,
			version = version + 1,
			updated_at = $4
		WHERE id = $1 AND version = $2
		RETURNING ` + reservationColumns

	ctx, end := database.TraceQuery(ctx, "UpdateReservationStatus", query)
	res, err := scanReservation(r.pool.QueryRow(ctx, query, id, expectedVersion, status, time.Now().UTC()))
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMiss(ctx, id)
		}
		return nil, fmt.Errorf("update reservation status: %w", err)
	}

	return res, nil
}

// classifyMiss distinguishes a conditional update that matched no row: either
// the reservation does not exist at all, or it exists at a different version.
func (r *ReservationRepository) classifyMiss(ctx context.Context, id string) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check reservation existence: %w", err)
	}
	if exists {
		return apperrors.Conflict("reservation was modified by another request")
	}
	return apperrors.NotFound("reservation", id)
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.GuestName,
		&res.ContactPhone,
		&res.ContactEmail,
		&res.ExpectedArrival,
		&res.TableSize,
		&res.Status,
		&res.Version,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	reservations := make([]domain.Reservation, 0)

	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.GuestName,
			&res.ContactPhone,
			&res.ContactEmail,
			&res.ExpectedArrival,
			&res.TableSize,
			&res.Status,
			&res.Version,
			&res.CreatedAt,
			&res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}

	return reservations, nil
}
