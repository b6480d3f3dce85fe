package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aylinkaden/HotelReservationGo/internal/auth"
	"github.com/aylinkaden/HotelReservationGo/internal/repository"
	"github.com/aylinkaden/HotelReservationGo/internal/service"
	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
	"github.com/aylinkaden/HotelReservationGo/pkg/httputil"
	"github.com/aylinkaden/HotelReservationGo/pkg/validator"
)

// ReservationHandler handles HTTP requests for reservation endpoints.
type ReservationHandler struct {
	service *service.ReservationService
	query   *service.ReservationQueryService
	logger  *slog.Logger
}

// NewReservationHandler creates a new reservation HTTP handler.
func NewReservationHandler(svc *service.ReservationService, query *service.ReservationQueryService, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: svc,
		query:   query,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ReservationDetailRequest is the JSON request body for the optional
// free-form preferences attached to a reservation.
type ReservationDetailRequest struct {
	SeatingPreference   string `json:"seating_preference" validate:"max=100"`
	Occasion            string `json:"occasion" validate:"max=100"`
	DietaryRequirements string `json:"dietary_requirements" validate:"max=500"`
	SpecialRequests     string `json:"special_requests" validate:"max=500"`
}

// CreateReservationRequest is the JSON request body for creating a
// reservation. Contact fields left empty are defaulted from the caller's
// identity claims.
type CreateReservationRequest struct {
	GuestName       string                    `json:"guest_name" validate:"omitempty,max=200"`
	ContactPhone    string                    `json:"contact_phone" validate:"omitempty,max=50"`
	ContactEmail    string                    `json:"contact_email" validate:"omitempty,email"`
	ExpectedArrival time.Time                 `json:"expected_arrival" validate:"required"`
	TableSize       int                       `json:"table_size" validate:"required,gt=0"`
	Detail          *ReservationDetailRequest `json:"detail"`
}

// UpdateReservationRequest is the JSON request body for a guest update.
// Version is the reservation version the caller last observed.
type UpdateReservationRequest struct {
	ExpectedArrival *time.Time `json:"expected_arrival"`
	TableSize       *int       `json:"table_size" validate:"omitempty,gt=0"`
	Version         *int       `json:"version" validate:"required,gte=0"`
}

// UpdateStatusRequest is the JSON request body for an employee status change.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=Requested Approved Completed Cancelled"`
	Version *int   `json:"version" validate:"required,gte=0"`
}

// CancelReservationRequest is the JSON request body for an owner cancel.
type CancelReservationRequest struct {
	Version *int `json:"version" validate:"required,gte=0"`
}

// --- Handlers ---

// CreateReservation handles POST /api/v1/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing authentication"), h.logger)
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.CreateReservationInput{
		GuestName:       req.GuestName,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
		ExpectedArrival: req.ExpectedArrival,
		TableSize:       req.TableSize,
	}
	if req.Detail != nil {
		input.Detail = &service.DetailInput{
			SeatingPreference:   req.Detail.SeatingPreference,
			Occasion:            req.Detail.Occasion,
			DietaryRequirements: req.Detail.DietaryRequirements,
			SpecialRequests:     req.Detail.SpecialRequests,
		}
	}

	res, err := h.service.Create(r.Context(), principal, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: res})
}

// ListReservations handles GET /api/v1/reservations
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	var filter repository.ReservationFilter

	if v := r.URL.Query().Get("date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "date must be in YYYY-MM-DD format"},
			})
			return
		}
		filter.Date = &day
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	reservations, err := h.query.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(reservations))
}

// ListOwnReservations handles GET /api/v1/reservations/my
func (h *ReservationHandler) ListOwnReservations(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing authentication"), h.logger)
		return
	}

	reservations, err := h.query.ListOwn(r.Context(), principal)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(reservations))
}

// GetReservation handles GET /api/v1/reservations/{id}
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing authentication"), h.logger)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := h.query.Get(r.Context(), principal, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
}

// UpdateReservation handles PUT /api/v1/reservations/{id}
func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing authentication"), h.logger)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.Update(r.Context(), principal, id.String(), service.UpdateReservationInput{
		ExpectedArrival: req.ExpectedArrival,
		TableSize:       req.TableSize,
		Version:         *req.Version,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
}

// UpdateReservationStatus handles PUT /api/v1/reservations/{id}/status
func (h *ReservationHandler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.SetStatus(r.Context(), id.String(), req.Status, *req.Version)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
}

// CancelReservation handles POST /api/v1/reservations/{id}/cancel
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing authentication"), h.logger)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CancelReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.CancelOwned(r.Context(), principal, id.String(), *req.Version)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
}
