package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aylinkaden/HotelReservationGo/internal/auth"
	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	"github.com/aylinkaden/HotelReservationGo/internal/service"
	"github.com/aylinkaden/HotelReservationGo/pkg/health"
	"github.com/aylinkaden/HotelReservationGo/pkg/middleware"
)

// NewRouter creates a chi router with all reservation service routes
// registered. Every reservation endpoint requires a valid bearer token; the
// role set per route decides whether guests, employees, or both may call it.
func NewRouter(
	reservationService *service.ReservationService,
	queryService *service.ReservationQueryService,
	gate *auth.Gate,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	rateLimitRPS, rateLimitBurst int,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RateLimit(rateLimitRPS, rateLimitBurst, logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("reservation"))
	r.Use(middleware.Tracing("reservation"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	handler := NewReservationHandler(reservationService, queryService, logger)

	guestOnly := auth.Require(gate, logger, domain.RoleGuest)
	employeeOnly := auth.Require(gate, logger, domain.RoleEmployee)
	anyRole := auth.Require(gate, logger, domain.RoleGuest, domain.RoleEmployee)

	r.Route("/api/v1/reservations", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.With(guestOnly).Post("/", handler.CreateReservation)
		r.With(employeeOnly).Get("/", handler.ListReservations)
		r.With(guestOnly).Get("/my", handler.ListOwnReservations)
		r.With(anyRole).Get("/{id}", handler.GetReservation)
		r.With(guestOnly).Put("/{id}", handler.UpdateReservation)
		r.With(employeeOnly).Put("/{id}/status", handler.UpdateReservationStatus)
		r.With(guestOnly).Post("/{id}/cancel", handler.CancelReservation)
	})

	return r
}
