package repository

import (
	"context"
	"time"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
)

// ReservationFilter defines filter criteria for listing reservations.
// Date matches reservations whose expected arrival falls on that UTC calendar
// day. Nil fields are ignored.
type ReservationFilter struct {
	Date   *time.Time
	Status *string
}

// ReservationRepository defines the interface for reservation persistence.
type ReservationRepository interface {
	// Create inserts a new reservation.
	Create(ctx context.Context, reservation *domain.Reservation) error

	// GetByID retrieves a reservation by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)

	// ListByOwner returns all reservations created by the given user,
	// soonest arrival first.
	ListByOwner(ctx context.Context, userID string) ([]domain.Reservation, error)

	// List returns reservations matching the given filter, soonest arrival first.
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)

	// UpdateFields applies the non-nil fields to the reservation identified by
	// id, but only if its current version equals expectedVersion. On success
	// the stored version is incremented and the updated row is returned.
	// Returns ErrNotFound if no reservation with that id exists, ErrConflict
	// if it exists at a different version.
	UpdateFields(ctx context.Context, id string, fields UpdateFields, expectedVersion int) (*domain.Reservation, error)

	// UpdateStatus transitions the reservation to the given status under the
	// same optimistic concurrency rules as UpdateFields.
	UpdateStatus(ctx context.Context, id string, status string, expectedVersion int) (*domain.Reservation, error)
}

// UpdateFields holds the mutable reservation fields for a guest-initiated
// update. Nil means leave unchanged.
type UpdateFields struct {
	ExpectedArrival *time.Time
	TableSize       *int
}

// DetailRepository defines the interface for reservation detail persistence.
type DetailRepository interface {
	// Upsert inserts or replaces the detail record for a reservation.
	Upsert(ctx context.Context, detail *domain.ReservationDetail) error

	// GetByReservationID retrieves the detail for a single reservation, or
	// ErrNotFound when none exists.
	GetByReservationID(ctx context.Context, reservationID string) (*domain.ReservationDetail, error)

	// GetByReservationIDs batch-loads details for the given reservations,
	// keyed by reservation ID. Reservations without a detail are absent from
	// the map.
	GetByReservationIDs(ctx context.Context, reservationIDs []string) (map[string]*domain.ReservationDetail, error)
}
