package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	pkgkafka "github.com/aylinkaden/HotelReservationGo/pkg/kafka"
)

// Kafka topics for reservation domain events.
var (
	TopicReservationCreated       = pkgkafka.Topic("reservation", "created")
	TopicReservationStatusChanged = pkgkafka.Topic("reservation", "status_changed")
	TopicReservationCancelled     = pkgkafka.Topic("reservation", "cancelled")
)

// Aggregate type constant.
const AggregateTypeReservation = "reservation"

// Source identifier for events originating from this service.
const SourceReservationService = "reservation-service"

// ReservationCreatedData is the payload for a reservation.created event
// (full reservation snapshot).
type ReservationCreatedData struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	GuestName       string    `json:"guest_name"`
	ContactPhone    string    `json:"contact_phone"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	ExpectedArrival time.Time `json:"expected_arrival"`
	TableSize       int       `json:"table_size"`
	Status          string    `json:"status"`
}

// ReservationStatusChangedData is the payload for a
// reservation.status_changed event.
type ReservationStatusChangedData struct {
	ReservationID string `json:"reservation_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	Version       int    `json:"version"`
}

// ReservationCancelledData is the payload for a reservation.cancelled event.
type ReservationCancelledData struct {
	ReservationID string `json:"reservation_id"`
	UserID        string `json:"user_id,omitempty"`
	Version       int    `json:"version"`
}

// Producer publishes reservation domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the reservation service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReservationCreated publishes a reservation.created event with the
// full reservation snapshot.
func (p *Producer) PublishReservationCreated(ctx context.Context, res *domain.Reservation) error {
	data := ReservationCreatedData{
		ID:              res.ID,
		UserID:          res.UserID,
		GuestName:       res.GuestName,
		ContactPhone:    res.ContactPhone,
		ContactEmail:    res.ContactEmail,
		ExpectedArrival: res.ExpectedArrival,
		TableSize:       res.TableSize,
		Status:          res.Status,
	}

	event, err := pkgkafka.NewEvent(TopicReservationCreated, res.ID, AggregateTypeReservation, SourceReservationService, data)
	if err != nil {
		return fmt.Errorf("create reservation.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReservationCreated, event); err != nil {
		return fmt.Errorf("publish reservation.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published reservation.created event",
		slog.String("reservation_id", res.ID),
		slog.String("user_id", res.UserID),
	)

	return nil
}

// PublishReservationStatusChanged publishes a reservation.status_changed event.
func (p *Producer) PublishReservationStatusChanged(ctx context.Context, res *domain.Reservation, oldStatus string) error {
	data := ReservationStatusChangedData{
		ReservationID: res.ID,
		OldStatus:     oldStatus,
		NewStatus:     res.Status,
		Version:       res.Version,
	}

	event, err := pkgkafka.NewEvent(TopicReservationStatusChanged, res.ID, AggregateTypeReservation, SourceReservationService, data)
	if err != nil {
		return fmt.Errorf("create reservation.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReservationStatusChanged, event); err != nil {
		return fmt.Errorf("publish reservation.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published reservation.status_changed event",
		slog.String("reservation_id", res.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", res.Status),
	)

	return nil
}

// PublishReservationCancelled publishes a reservation.cancelled event.
func (p *Producer) PublishReservationCancelled(ctx context.Context, res *domain.Reservation) error {
	data := ReservationCancelledData{
		ReservationID: res.ID,
		UserID:        res.UserID,
		Version:       res.Version,
	}

	event, err := pkgkafka.NewEvent(TopicReservationCancelled, res.ID, AggregateTypeReservation, SourceReservationService, data)
	if err != nil {
		return fmt.Errorf("create reservation.cancelled event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReservationCancelled, event); err != nil {
		return fmt.Errorf("publish reservation.cancelled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published reservation.cancelled event",
		slog.String("reservation_id", res.ID),
	)

	return nil
}
