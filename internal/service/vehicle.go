package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/repo"
)

// VehicleService exposes the read-only vehicle registry.
type VehicleService struct {
	uow repo.UnitOfWork
}

func NewVehicleService(uow repo.UnitOfWork) *VehicleService {
	return &VehicleService{uow: uow}
}

// List returns all vehicles ordered by name. Always non-nil.
func (s *VehicleService) List(ctx context.Context) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		var err error
		vehicles, err = st.Vehicles.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.VehicleService.List: %w", err)
	}
	if vehicles == nil {
		return []domain.Vehicle{}, nil
	}
	return vehicles, nil
}

func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		var err error
		v, err = st.Vehicles.GetByID(ctx, id)
		return notFoundAs(err, "vehicle", id)
	})
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", err)
	}
	return v, nil
}

// GetByTripID returns the vehicle assigned to a trip.
// A missing trip is reported as a *domain.NotFoundError naming the trip.
func (s *VehicleService) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		var err error
		v, err = st.Vehicles.GetByTripID(ctx, tripID)
		return notFoundAs(err, "trip", tripID)
	})
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByTripID: %w", err)
	}
	return v, nil
}
