package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/repo"
)

// CargoService creates, changes, and removes cargos. Every mutation that can
// grow the load of a trip runs its admission check and its write inside one
// transaction, with the affected trip rows locked, so concurrent requests
// cannot jointly push a trip past its vehicle's capacity.
type CargoService struct {
	uow repo.UnitOfWork
	log *slog.Logger
}

// NewCargoService constructs a CargoService. A nil logger falls back to slog.Default.
func NewCargoService(uow repo.UnitOfWork, log *slog.Logger) *CargoService {
	if log == nil {
		log = slog.Default()
	}
	return &CargoService{uow: uow, log: log}
}

// Create validates the cargo, confirms the trip exists and has room, then persists it.
// Returns domain.ErrValidation for bad input, a *domain.NotFoundError if the
// trip does not exist, and a *domain.CapacityExceededError if the cargo does not fit.
func (s *CargoService) Create(ctx context.Context, cargo domain.Cargo) (domain.Cargo, error) {
	cargo.Name = strings.TrimSpace(cargo.Name)
	if err := validateCargo(cargo); err != nil {
		return domain.Cargo{}, err
	}

	var created domain.Cargo
	err := s.uow.WithinTx(ctx, func(ctx context.Context, st repo.Stores) error {
		if err := st.Trips.Lock(ctx, cargo.TripID); err != nil {
			return err
		}
		if _, err := st.Trips.GetByID(ctx, cargo.TripID); err != nil {
			return notFoundAs(err, "trip", cargo.TripID)
		}
		if err := admit(ctx, st.Cargos, OpCreate, cargo.TripID, cargo.Size, nil); err != nil {
			return err
		}

		var err error
		created, err = st.Cargos.Create(ctx, cargo)
		return err
	})
	if err != nil {
		s.logRejection(OpCreate, err)
		return domain.Cargo{}, fmt.Errorf("service.CargoService.Create: %w", err)
	}
	return created, nil
}

// Get returns a single cargo by ID.
func (s *CargoService) Get(ctx context.Context, id uuid.UUID) (domain.Cargo, error) {
	var cargo domain.Cargo
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		var err error
		cargo, err = st.Cargos.GetByID(ctx, id)
		return notFoundAs(err, "cargo", id)
	})
	if err != nil {
		return domain.Cargo{}, fmt.Errorf("service.CargoService.Get: %w", err)
	}
	return cargo, nil
}

// ListByTrip returns the cargos loaded on a trip. The trip must exist.
// Always returns a non-nil slice.
func (s *CargoService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Cargo, error) {
	var cargos []domain.Cargo
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		if _, err := st.Trips.GetByID(ctx, tripID); err != nil {
			return notFoundAs(err, "trip", tripID)
		}
		var err error
		cargos, err = st.Cargos.ListByTripID(ctx, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.CargoService.ListByTrip: %w", err)
	}
	if cargos == nil {
		return []domain.Cargo{}, nil
	}
	return cargos, nil
}

// List returns one page of cargos and the total number of cargos.
func (s *CargoService) List(ctx context.Context, p domain.PaginationParams) ([]domain.Cargo, int64, error) {
	var (
		cargos []domain.Cargo
		total  int64
	)
	err := s.uow.Read(ctx, func(ctx context.Context, st repo.Stores) error {
		var err error
		cargos, total, err = st.Cargos.List(ctx, p)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("service.CargoService.List: %w", err)
	}
	if cargos == nil {
		cargos = []domain.Cargo{}
	}
	return cargos, total, nil
}

// Update applies a partial change to a cargo: rename, resize, transfer to
// another trip, or any combination.
//
// A transfer requires the target trip to serve the same destination and to
// have room for the cargo at its new size; the old trip's load no longer
// matters. A resize on the same trip is checked with the cargo's current
// size left out of the trip's used space. A rename alone is never checked.
func (s *CargoService) Update(ctx context.Context, id uuid.UUID, patch domain.CargoPatch) (domain.Cargo, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := validateCargoPatch(patch); err != nil {
		return domain.Cargo{}, err
	}

	op := ""
	var updated domain.Cargo
	err := s.uow.WithinTx(ctx, func(ctx context.Context, st repo.Stores) error {
		current, err := st.Cargos.GetForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, "cargo", id)
		}

		switch {
		case patch.MovesFrom(current.TripID):
			op = OpTransfer
			if err := checkTransfer(ctx, st, current, patch); err != nil {
				return err
			}
		case patch.Resizes(current.Size):
			op = OpResize
			if err := st.Trips.Lock(ctx, current.TripID); err != nil {
				return err
			}
			if err := admit(ctx, st.Cargos, OpResize, current.TripID, *patch.Size, &current.ID); err != nil {
				return err
			}
		}

		updated, err = st.Cargos.Update(ctx, patch.Apply(current))
		return err
	})
	if err != nil {
		s.logRejection(op, err)
		return domain.Cargo{}, fmt.Errorf("service.CargoService.Update: %w", err)
	}
	return updated, nil
}

// checkTransfer gates moving current onto the trip named by patch.TripID.
// Both trips are locked before either is read.
func checkTransfer(ctx context.Context, st repo.Stores, current domain.Cargo, patch domain.CargoPatch) error {
	target := *patch.TripID
	if err := st.Trips.Lock(ctx, current.TripID, target); err != nil {
		return err
	}

	to, err := st.Trips.GetByID(ctx, target)
	if err != nil {
		return notFoundAs(err, "target trip", target)
	}
	from, err := st.Trips.GetByID(ctx, current.TripID)
	if err != nil {
		return notFoundAs(err, "current trip", current.TripID)
	}
	if from.Destination != to.Destination {
		return &domain.DestinationMismatchError{From: from.Destination, To: to.Destination}
	}

	size := current.Size
	if patch.Size != nil {
		size = *patch.Size
	}
	// The cargo is not on the target trip yet, so nothing is excluded.
	return admit(ctx, st.Cargos, OpTransfer, target, size, nil)
}

// Delete removes a cargo. Returns a *domain.NotFoundError if it does not exist.
func (s *CargoService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, st repo.Stores) error {
		removed, err := st.Cargos.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return domain.NewNotFound("cargo", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service.CargoService.Delete: %w", err)
	}
	return nil
}

func (s *CargoService) logRejection(op string, err error) {
	var capErr *domain.CapacityExceededError
	if errors.As(err, &capErr) {
		s.log.Info("cargo rejected: capacity exceeded",
			"operation", op,
			"trip_id", capErr.TripID,
			"requested", capErr.Requested,
			"available", capErr.Available,
		)
		return
	}
	var destErr *domain.DestinationMismatchError
	if errors.As(err, &destErr) {
		s.log.Info("cargo rejected: destination mismatch",
			"operation", op,
			"from", destErr.From,
			"to", destErr.To,
		)
	}
}

// validateCargo enforces business rules for a new cargo.
func validateCargo(c domain.Cargo) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be a positive integer", domain.ErrValidation)
	}
	if c.TripID == uuid.Nil {
		return fmt.Errorf("%w: trip_id is required", domain.ErrValidation)
	}
	return nil
}

func validateCargoPatch(p domain.CargoPatch) error {
	if p.Name == nil && p.Size == nil && p.TripID == nil {
		return fmt.Errorf("%w: at least one of name, size, trip_id is required", domain.ErrValidation)
	}
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	if p.Size != nil && *p.Size <= 0 {
		return fmt.Errorf("%w: size must be a positive integer", domain.ErrValidation)
	}
	if p.TripID != nil && *p.TripID == uuid.Nil {
		return fmt.Errorf("%w: trip_id must not be nil", domain.ErrValidation)
	}
	return nil
}

// notFoundAs replaces a bare not-found error with one naming entity and id.
// Other errors pass through untouched.
func notFoundAs(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFound(entity, id)
	}
	return err
}
