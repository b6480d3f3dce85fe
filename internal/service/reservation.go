package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	"github.com/aylinkaden/HotelReservationGo/internal/event"
	"github.com/aylinkaden/HotelReservationGo/internal/repository"
	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
)

// ReservationService implements the business logic for reservation mutations.
// All writes go through optimistic concurrency: the caller presents the version
// it last observed and loses with a conflict if someone else wrote first.
type ReservationService struct {
	repo     repository.ReservationRepository
	details  repository.DetailRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReservationService creates a new reservation service.
func NewReservationService(repo repository.ReservationRepository, details repository.DetailRepository, producer *event.Producer, logger *slog.Logger) *ReservationService {
	return &ReservationService{
		repo:     repo,
		details:  details,
		producer: producer,
		logger:   logger,
	}
}

// DetailInput holds the optional free-form preferences for a reservation.
type DetailInput struct {
	SeatingPreference   string
	Occasion            string
	DietaryRequirements string
	SpecialRequests     string
}

// CreateReservationInput holds the parameters for creating a reservation.
// Contact fields left empty are defaulted from the authenticated principal.
type CreateReservationInput struct {
	GuestName       string
	ContactPhone    string
	ContactEmail    string
	ExpectedArrival time.Time
	TableSize       int
	Detail          *DetailInput
}

// Create creates a new reservation owned by the given principal. The
// reservation starts in the Requested status at version zero.
func (s *ReservationService) Create(ctx context.Context, principal *domain.Principal, input CreateReservationInput) (*domain.Reservation, error) {
	guestName := strings.TrimSpace(input.GuestName)
	if guestName == "" {
		guestName = principal.Name
	}
	contactPhone := strings.TrimSpace(input.ContactPhone)
	if contactPhone == "" {
		contactPhone = principal.Phone
	}
	contactEmail := strings.TrimSpace(input.ContactEmail)
	if contactEmail == "" {
		contactEmail = principal.Email
	}

	if guestName == "" {
		return nil, apperrors.InvalidInput("guest_name is required")
	}
	if contactPhone == "" {
		return nil, apperrors.InvalidInput("contact_phone is required")
	}
	if input.ExpectedArrival.IsZero() {
		return nil, apperrors.InvalidInput("expected_arrival is required")
	}
	if input.TableSize <= 0 {
		return nil, apperrors.InvalidInput("table_size must be positive")
	}

	now := time.Now().UTC()
	res := &domain.Reservation{
		ID:              uuid.New().String(),
		UserID:          principal.Subject,
		GuestName:       guestName,
		ContactPhone:    contactPhone,
		ContactEmail:    contactEmail,
		ExpectedArrival: input.ExpectedArrival.UTC(),
		TableSize:       input.TableSize,
		Status:          domain.StatusRequested,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	if input.Detail != nil {
		detail := &domain.ReservationDetail{
			ID:                  uuid.New().String(),
			ReservationID:       res.ID,
			SeatingPreference:   input.Detail.SeatingPreference,
			Occasion:            input.Detail.Occasion,
			DietaryRequirements: input.Detail.DietaryRequirements,
			SpecialRequests:     input.Detail.SpecialRequests,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := s.details.Upsert(ctx, detail); err != nil {
			return nil, fmt.Errorf("save reservation detail: %w", err)
		}
		res.Detail = detail
	}

	if err := s.producer.PublishReservationCreated(ctx, res); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish reservation.created event",
			slog.String("reservation_id", res.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "reservation created",
		slog.String("reservation_id", res.ID),
		slog.String("user_id", res.UserID),
		slog.Int("table_size", res.TableSize),
	)

	return res, nil
}

// UpdateReservationInput holds the guest-mutable fields plus the version the
// caller last observed. Nil fields are left unchanged.
type UpdateReservationInput struct {
	ExpectedArrival *time.Time
	TableSize       *int
	Version         int
}

// Update applies a guest update to a reservation the principal owns.
// A reservation that does not exist or belongs to someone else reads as
// not found, so callers cannot probe for foreign reservation ids.
func (s *ReservationService) Update(ctx context.Context, principal *domain.Principal, id string, input UpdateReservationInput) (*domain.Reservation, error) {
	if input.ExpectedArrival == nil && input.TableSize == nil {
		return nil, apperrors.InvalidInput("no fields to update")
	}
	if input.TableSize != nil && *input.TableSize <= 0 {
		return nil, apperrors.InvalidInput("table_size must be positive")
	}
	if input.ExpectedArrival != nil && input.ExpectedArrival.IsZero() {
		return nil, apperrors.InvalidInput("expected_arrival must be a valid timestamp")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation for update: %w", err)
	}
	if !current.OwnedBy(principal.Subject) {
		return nil, apperrors.NotFound("reservation", id)
	}
	if current.IsTerminal() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("reservation in %q status cannot be modified", current.Status))
	}

	fields := repository.UpdateFields{
		TableSize: input.TableSize,
	}
	if input.ExpectedArrival != nil {
		arrival := input.ExpectedArrival.UTC()
		fields.ExpectedArrival = &arrival
	}

	updated, err := s.repo.UpdateFields(ctx, id, fields, input.Version)
	if err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}

	s.logger.InfoContext(ctx, "reservation updated",
		slog.String("reservation_id", updated.ID),
		slog.Int("version", updated.Version),
	)

	return updated, nil
}

// SetStatus transitions a reservation to a new status on behalf of an
// employee, under optimistic concurrency.
func (s *ReservationService) SetStatus(ctx context.Context, id string, newStatus string, version int) (*domain.Reservation, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", newStatus, strings.Join(domain.ValidStatuses(), ", ")))
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation for status update: %w", err)
	}
	if current.IsTerminal() && current.Status != newStatus {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cannot transition out of terminal status %q", current.Status))
	}

	oldStatus := current.Status

	updated, err := s.repo.UpdateStatus(ctx, id, newStatus, version)
	if err != nil {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}

	if err := s.producer.PublishReservationStatusChanged(ctx, updated, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish reservation.status_changed event",
			slog.String("reservation_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "reservation status updated",
		slog.String("reservation_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", updated.Status),
	)

	return updated, nil
}

// CancelOwned cancels a reservation on behalf of its owner using the version
// the caller last observed. A reservation that does not exist or belongs to
// someone else reads as not found. Cancelling an already terminal reservation
// is an idempotent no-op: the record is returned unchanged and nothing is
// written, regardless of the supplied version.
func (s *ReservationService) CancelOwned(ctx context.Context, principal *domain.Principal, id string, version int) (*domain.Reservation, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation for cancel: %w", err)
	}
	if !current.OwnedBy(principal.Subject) {
		return nil, apperrors.NotFound("reservation", id)
	}

	if current.IsTerminal() {
		return current, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, domain.StatusCancelled, version)
	if err != nil {
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}

	if err := s.producer.PublishReservationCancelled(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish reservation.cancelled event",
			slog.String("reservation_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "reservation cancelled",
		slog.String("reservation_id", id),
		slog.String("user_id", principal.Subject),
	)

	return updated, nil
}
