package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/metrics"
	"github.com/pkordes/cargotrack/backend/internal/repo"
)

// Operations that change the space occupied on a trip. Used as metric labels.
const (
	OpCreate    = "create"
	OpResize    = "resize"
	OpTransfer  = "transfer"
	OpRevehicle = "revehicle"
)

// CapacityEngine answers space questions about a trip. It holds no state of
// its own; every answer is computed from storage at call time.
//
// The read methods here run outside any transaction and are for queries.
// Mutating services call admit with repositories bound to their own
// transaction instead, so the check and the write see the same data.
type CapacityEngine struct {
	uow repo.UnitOfWork
}

// NewCapacityEngine constructs a CapacityEngine backed by the provided unit of work.
func NewCapacityEngine(uow repo.UnitOfWork) *CapacityEngine {
	return &CapacityEngine{uow: uow}
}

// Space returns the capacity snapshot of a trip. When exclude is non-nil that
// cargo's size is left out of Used.
// Returns a *domain.NotFoundError if the trip or its vehicle cannot be resolved.
func (e *CapacityEngine) Space(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (domain.Space, error) {
	var space domain.Space
	err := e.uow.Read(ctx, func(ctx context.Context, s repo.Stores) error {
		var err error
		space, err = s.Cargos.Space(ctx, tripID, exclude)
		return err
	})
	if err != nil {
		return domain.Space{}, fmt.Errorf("service.CapacityEngine.Space: %w", err)
	}
	return space, nil
}

// UsedSpace sums the sizes of the trip's cargos, minus exclude. Zero for a trip with no cargo.
func (e *CapacityEngine) UsedSpace(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (int, error) {
	space, err := e.Space(ctx, tripID, exclude)
	if err != nil {
		return 0, err
	}
	return space.Used, nil
}

// AvailableSpace is the vehicle capacity minus UsedSpace.
func (e *CapacityEngine) AvailableSpace(ctx context.Context, tripID uuid.UUID, exclude *uuid.UUID) (int, error) {
	space, err := e.Space(ctx, tripID, exclude)
	if err != nil {
		return 0, err
	}
	return space.Available(), nil
}

// CanAdmit reports whether size more units fit on the trip, with exclude's
// current size not counted.
func (e *CapacityEngine) CanAdmit(ctx context.Context, tripID uuid.UUID, size int, exclude *uuid.UUID) (bool, error) {
	if size <= 0 {
		return false, fmt.Errorf("%w: size must be a positive integer", domain.ErrValidation)
	}
	space, err := e.Space(ctx, tripID, exclude)
	if err != nil {
		return false, err
	}
	return space.Admits(size), nil
}

// Overloaded lists trips whose cargo exceeds their vehicle's capacity.
func (e *CapacityEngine) Overloaded(ctx context.Context) ([]domain.Space, error) {
	var out []domain.Space
	err := e.uow.Read(ctx, func(ctx context.Context, s repo.Stores) error {
		var err error
		out, err = s.Cargos.Overloaded(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.CapacityEngine.Overloaded: %w", err)
	}
	return out, nil
}

// admit is the admission gate for every mutation that changes the space
// occupied on a trip. cargos must be bound to the caller's transaction and
// the trip row must already be locked.
//
// exclude must be the cargo's own id whenever that cargo is already on
// tripID, otherwise its current size would count against its new size.
func admit(ctx context.Context, cargos repo.CargoRepo, op string, tripID uuid.UUID, size int, exclude *uuid.UUID) error {
	space, err := cargos.Space(ctx, tripID, exclude)
	if err != nil {
		return err
	}

	ok := space.Admits(size)
	metrics.RecordAdmission(op, ok)
	if !ok {
		return &domain.CapacityExceededError{
			TripID:    tripID,
			Requested: size,
			Available: space.Available(),
		}
	}
	return nil
}
