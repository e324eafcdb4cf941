// Package handler implements the HTTP handlers for the cargotrack API.
// All handlers are methods on Server. They are split into resource files
// (health.go, trip.go, cargo.go, ...) but share the Server struct so they can
// reach its dependencies. Routes are mounted on a chi router by Routes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// VehicleServicer defines the vehicle registry operations the handlers depend on.
// Interfaces live in the consumer package so tests can inject mocks.
type VehicleServicer interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Vehicle, error)
}

// TripServicer defines the trip ledger operations the handlers depend on.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetLoad(ctx context.Context, id uuid.UUID) (domain.TripLoad, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.TripLoad, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Destinations() []string
}

// CargoServicer defines the cargo operations the handlers depend on.
type CargoServicer interface {
	Create(ctx context.Context, cargo domain.Cargo) (domain.Cargo, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Cargo, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Cargo, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Cargo, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.CargoPatch) (domain.Cargo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SpaceServicer answers capacity queries for a trip.
type SpaceServicer interface {
	Space(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (domain.Space, error)
}

// ExportServicer produces the cargo manifest.
type ExportServicer interface {
	Manifest(ctx context.Context) ([]domain.ManifestRow, error)
}

// Server holds the service dependencies of every handler.
// A nil service is fine as long as its routes are never hit (tests rely on this).
type Server struct {
	vehicles VehicleServicer
	trips    TripServicer
	cargos   CargoServicer
	space    SpaceServicer
	export   ExportServicer
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default.
func NewServer(
	vehicles VehicleServicer,
	trips TripServicer,
	cargos CargoServicer,
	space SpaceServicer,
	export ExportServicer,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		vehicles: vehicles,
		trips:    trips,
		cargos:   cargos,
		space:    space,
		export:   export,
		log:      log,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil, nil)
}

// Routes mounts every endpoint on r. apiMiddleware is applied to the
// /api/v1 subtree only, so /healthz stays reachable when e.g. request
// validation is misconfigured.
func (s *Server) Routes(r chi.Router, apiMiddleware ...func(http.Handler) http.Handler) {
	r.Get("/healthz", s.GetHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiMiddleware...)

		r.Get("/vehicles", s.ListVehicles)
		r.Get("/vehicles/{id}", s.GetVehicle)

		r.Get("/trips", s.ListTrips)
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/destinations", s.ListDestinations)
		r.Get("/trips/{id}", s.GetTrip)
		r.Put("/trips/{id}", s.UpdateTrip)
		r.Delete("/trips/{id}", s.DeleteTrip)
		r.Get("/trips/{id}/space", s.GetTripSpace)
		r.Get("/trips/{id}/vehicle", s.GetTripVehicle)
		r.Get("/trips/{id}/cargos", s.ListTripCargos)

		r.Get("/cargos", s.ListCargos)
		r.Post("/cargos", s.CreateCargo)
		r.Get("/cargos/{id}", s.GetCargo)
		r.Put("/cargos/{id}", s.UpdateCargo)
		r.Delete("/cargos/{id}", s.DeleteCargo)

		r.Get("/export", s.GetExport)
	})
}

// Handler returns a fresh chi router with all routes mounted.
func (s *Server) Handler(apiMiddleware ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	s.Routes(r, apiMiddleware...)
	return r
}
