// Package service contains the business logic for the cargotrack API.
// Services validate inputs, enforce capacity rules, and orchestrate repo calls
// inside the unit of work. No SQL lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/metrics"
	"github.com/pkordes/cargotrack/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	uow          repo.UnitOfWork
	destinations domain.Destinations
	log          *slog.Logger
}

// NewTripService constructs a TripService. An empty destination set falls
// back to domain.DefaultDestinations; a nil logger to slog.Default.
func NewTripService(uow repo.UnitOfWork, destinations domain.Destinations, log *slog.Logger) *TripService {
	if len(destinations) == 0 {
		destinations = domain.DefaultDestinations
	}
	if log == nil {
		log = slog.Default()
	}
	return &TripService{uow: uow, destinations: destinations, log: log}
}

// Destinations returns the closed set of destinations a trip may use.
func (s *TripService) Destinations() []string {
	return s.destinations.List()
}

// Create validates and persists a new trip.
// Returns domain.ErrValidation for an unknown destination and
// domain.ErrInvalidReference if the vehicle does not exist.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := s.validateDestination(trip.Destination); err != nil {
		return domain.Trip{}, err
	}
	if trip.VehicleID == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("%w: vehicle_id is required", domain.ErrValidation)
	}

	var created domain.Trip
	err := s.uow.WithinTx(ctx, func(ctx context.Context, st repo.Stores) error {
		if _, err := st.Vehicles.GetByID(ctx, trip.VehicleID); err != nil {
			return invalidVehicle(err, trip.VehicleID)
		}
		var err error
		created, err = st.Trips.Create(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// Get returns a trip with its vehicle resolved.
func (s *TripService) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		var err error
		trip, err = st.Trips.GetByID(ctx, id)
		return notFoundAs(err, "trip", id)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// GetLoad returns a trip together with its cargos and space accounting.
func (s *TripService) GetLoad(ctx context.Context, id uuid.UUID) (domain.TripLoad, error) {
	var load domain.TripLoad
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		trip, err := st.Trips.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "trip", id)
		}
		load, err = loadOf(ctx, st, trip)
		return err
	})
	if err != nil {
		return domain.TripLoad{}, fmt.Errorf("service.TripService.GetLoad: %w", err)
	}
	return load, nil
}

// List returns one page of trips with their loads, and the total trip count.
func (s *TripService) List(ctx context.Context, p domain.PaginationParams) ([]domain.TripLoad, int64, error) {
	var (
		loads []domain.TripLoad
		total int64
	)
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		trips, n, err := st.Trips.List(ctx, p)
		if err != nil {
			return err
		}
		total = n
		loads = make([]domain.TripLoad, 0, len(trips))
		for _, t := range trips {
			load, err := loadOf(ctx, st, t)
			if err != nil {
				return err
			}
			loads = append(loads, load)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	return loads, total, nil
}

// Update applies a partial change to a trip.
//
// Switching vehicles re-validates the trip's current load against the new
// vehicle's capacity in the same transaction. A load that does not fit fails
// with a *domain.CapacityExceededError whose Requested is the current load and
// whose Available is the new vehicle's capacity.
func (s *TripService) Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	if patch.Empty() {
		return domain.Trip{}, fmt.Errorf("%w: at least one of destination, vehicle_id is required", domain.ErrValidation)
	}
	if patch.Destination != nil {
		if err := s.validateDestination(*patch.Destination); err != nil {
			return domain.Trip{}, err
		}
	}
	if patch.VehicleID != nil && *patch.VehicleID == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("%w: vehicle_id must not be nil", domain.ErrValidation)
	}

	var updated domain.Trip
	err := s.uow.WithinTx(ctx, func(ctx context.Context, st repo.Stores) error {
		if err := st.Trips.Lock(ctx, id); err != nil {
			return err
		}
		current, err := st.Trips.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "trip", id)
		}

		if patch.VehicleID != nil && *patch.VehicleID != current.VehicleID {
			if err := revehicle(ctx, st, id, *patch.VehicleID); err != nil {
				return err
			}
		}

		updated, err = st.Trips.Update(ctx, patch.Apply(current))
		return err
	})
	if err != nil {
		var capErr *domain.CapacityExceededError
		if errors.As(err, &capErr) {
			s.log.Info("trip rejected: load exceeds new vehicle",
				"trip_id", id, "load", capErr.Requested, "capacity", capErr.Available)
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return updated, nil
}

// revehicle checks that the trip's current load fits on vehicleID.
func revehicle(ctx context.Context, st repo.Stores, tripID, vehicleID uuid.UUID) error {
	vehicle, err := st.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return invalidVehicle(err, vehicleID)
	}
	space, err := st.Cargos.Space(ctx, tripID, nil)
	if err != nil {
		return err
	}

	ok := space.Used <= vehicle.Capacity
	metrics.RecordAdmission(OpRevehicle, ok)
	if !ok {
		return &domain.CapacityExceededError{
			TripID:    tripID,
			Requested: space.Used,
			Available: vehicle.Capacity,
		}
	}
	return nil
}

// Delete removes a trip and every cargo on it in one transaction.
// Returns a *domain.NotFoundError if the trip does not exist.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	var removed int64
	err := s.uow.WithinTx(ctx, func(ctx context.Context, st repo.Stores) error {
		if err := st.Trips.Lock(ctx, id); err != nil {
			return err
		}
		var err error
		removed, err = st.Cargos.DeleteByTripID(ctx, id)
		if err != nil {
			return err
		}
		ok, err := st.Trips.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFound("trip", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.log.Info("trip deleted", "trip_id", id, "cargos_removed", removed)
	return nil
}

func (s *TripService) validateDestination(name string) error {
	if name == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if !s.destinations.Contains(name) {
		return fmt.Errorf("%w: unknown destination %q", domain.ErrValidation, name)
	}
	return nil
}

func loadOf(ctx context.Context, st repo.Stores, trip domain.Trip) (domain.TripLoad, error) {
	cargos, err := st.Cargos.ListByTripID(ctx, trip.ID)
	if err != nil {
		return domain.TripLoad{}, err
	}
	if cargos == nil {
		cargos = []domain.Cargo{}
	}
	space, err := st.Cargos.Space(ctx, trip.ID, nil)
	if err != nil {
		return domain.TripLoad{}, err
	}
	return domain.TripLoad{Trip: trip, Cargos: cargos, Space: space}, nil
}

// invalidVehicle turns a missing vehicle into domain.ErrInvalidReference.
func invalidVehicle(err error, id uuid.UUID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: vehicle %s does not exist", domain.ErrInvalidReference, id)
	}
	return err
}
