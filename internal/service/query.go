package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	"github.com/aylinkaden/HotelReservationGo/internal/repository"
	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
)

// ReservationQueryService serves the read side of reservations. Guests only
// ever see their own reservations; employees see everything.
type ReservationQueryService struct {
	repo    repository.ReservationRepository
	details repository.DetailRepository
	logger  *slog.Logger
}

// NewReservationQueryService creates a new reservation query service.
func NewReservationQueryService(repo repository.ReservationRepository, details repository.DetailRepository, logger *slog.Logger) *ReservationQueryService {
	return &ReservationQueryService{
		repo:    repo,
		details: details,
		logger:  logger,
	}
}

// Get retrieves a single reservation with its detail attached. Employees may
// read any reservation; guests read only their own, and a foreign reservation
// reads as not found rather than forbidden.
func (s *ReservationQueryService) Get(ctx context.Context, principal *domain.Principal, id string) (*domain.Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	if !principal.IsEmployee() && !res.OwnedBy(principal.Subject) {
		return nil, apperrors.NotFound("reservation", id)
	}

	detail, err := s.details.GetByReservationID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get reservation detail: %w", err)
		}
	} else {
		res.Detail = detail
	}

	return res, nil
}

// ListOwn returns the principal's reservations, soonest arrival first, with
// details attached.
func (s *ReservationQueryService) ListOwn(ctx context.Context, principal *domain.Principal) ([]domain.Reservation, error) {
	reservations, err := s.repo.ListByOwner(ctx, principal.Subject)
	if err != nil {
		return nil, fmt.Errorf("list own reservations: %w", err)
	}

	if err := s.attachDetails(ctx, reservations); err != nil {
		return nil, err
	}

	return reservations, nil
}

// List returns reservations matching the filter, soonest arrival first, with
// details attached. This is the employee-facing listing.
func (s *ReservationQueryService) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status filter %q", *filter.Status))
	}

	reservations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	if err := s.attachDetails(ctx, reservations); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (s *ReservationQueryService) attachDetails(ctx context.Context, reservations []domain.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	ids := make([]string, 0, len(reservations))
	for i := range reservations {
		ids = append(ids, reservations[i].ID)
	}

	details, err := s.details.GetByReservationIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load reservation details: %w", err)
	}

	for i := range reservations {
		if d, ok := details[reservations[i].ID]; ok {
			reservations[i].Detail = d
		}
	}

	return nil
}
