package domain_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func idPtr(v uuid.UUID) *uuid.UUID { return &v }

// ---- errors ----------------------------------------------------------------

func TestCapacityExceededError_MatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service.CargoService.Create: %w",
		&domain.CapacityExceededError{TripID: uuid.New(), Requested: 5, Available: 4})

	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.NotErrorIs(t, err, domain.ErrDestinationMismatch)

	var capErr *domain.CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 4, capErr.Available)
	assert.Contains(t, err.Error(), "available 4")
}

func TestDestinationMismatchError_CarriesBothNames(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &domain.DestinationMismatchError{From: "Moscow", To: "Kazan"})

	assert.ErrorIs(t, err, domain.ErrDestinationMismatch)

	var dm *domain.DestinationMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, "Moscow", dm.From)
	assert.Equal(t, "Kazan", dm.To)
}

func TestNotFoundError_NamesEntity(t *testing.T) {
	id := uuid.New()
	err := domain.NewNotFound("trip", id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "trip "+id.String()+" not found", err.Error())
}

func TestIsRetryable(t *testing.T) {
	transient := fmt.Errorf("repo: %w: %w", domain.ErrTransientStorage, errors.New("conn reset"))

	assert.True(t, domain.IsRetryable(transient))
	assert.False(t, domain.IsRetryable(domain.ErrDataIntegrity))
	assert.False(t, domain.IsRetryable(&domain.CapacityExceededError{}))
	assert.False(t, domain.IsRetryable(nil))
}

// ---- space -----------------------------------------------------------------

func TestSpace_Admits(t *testing.T) {
	s := domain.Space{Capacity: 10, Used: 6}

	assert.Equal(t, 4, s.Available())
	assert.True(t, s.Admits(4), "filling to exactly capacity is allowed")
	assert.False(t, s.Admits(5))
	assert.False(t, s.Overloaded())
}

func TestSpace_Admits_HugeSizeDoesNotWrap(t *testing.T) {
	s := domain.Space{Capacity: 10, Used: 6}

	assert.False(t, s.Admits(math.MaxInt))
	assert.False(t, s.Admits(math.MaxInt-1))
	assert.False(t, s.Admits(math.MaxInt-5), "Used+size would wrap to a negative number")
}

func TestSpace_Overloaded(t *testing.T) {
	s := domain.Space{Capacity: 5, Used: 7}

	assert.True(t, s.Overloaded())
	assert.Equal(t, -2, s.Available())
	assert.False(t, s.Admits(0))
}

// ---- patches ---------------------------------------------------------------

func TestCargoPatch_Apply(t *testing.T) {
	orig := domain.Cargo{ID: uuid.New(), Name: "Boxes", Size: 3, TripID: uuid.New()}
	target := uuid.New()

	got := domain.CargoPatch{Size: intPtr(5), TripID: idPtr(target)}.Apply(orig)

	assert.Equal(t, "Boxes", got.Name, "unset fields are preserved")
	assert.Equal(t, 5, got.Size)
	assert.Equal(t, target, got.TripID)
	assert.Equal(t, 3, orig.Size, "original is not mutated")
}

func TestCargoPatch_MovesFromAndResizes(t *testing.T) {
	trip := uuid.New()

	assert.False(t, domain.CargoPatch{}.MovesFrom(trip))
	assert.False(t, domain.CargoPatch{TripID: idPtr(trip)}.MovesFrom(trip), "same trip is not a move")
	assert.True(t, domain.CargoPatch{TripID: idPtr(uuid.New())}.MovesFrom(trip))

	assert.False(t, domain.CargoPatch{Size: intPtr(4)}.Resizes(4))
	assert.True(t, domain.CargoPatch{Size: intPtr(5)}.Resizes(4))
	assert.False(t, domain.CargoPatch{Name: strPtr("x")}.Resizes(4))
}

func TestTripPatch_ApplyClearsResolvedVehicleOnChange(t *testing.T) {
	v := &domain.Vehicle{ID: uuid.New(), Capacity: 10}
	trip := domain.Trip{ID: uuid.New(), Destination: "Moscow", VehicleID: v.ID, Vehicle: v}

	same := domain.TripPatch{Destination: strPtr("Kazan")}.Apply(trip)
	assert.Equal(t, "Kazan", same.Destination)
	assert.Same(t, v, same.Vehicle)

	moved := domain.TripPatch{VehicleID: idPtr(uuid.New())}.Apply(trip)
	assert.Nil(t, moved.Vehicle)
	assert.True(t, domain.TripPatch{}.Empty())
}

// ---- destinations ----------------------------------------------------------

func TestDestinations(t *testing.T) {
	d := domain.Destinations(domain.DefaultDestinations)

	assert.True(t, d.Contains("Moscow"))
	assert.False(t, d.Contains("moscow"), "matching is exact")

	list := d.List()
	list[0] = "Paris"
	assert.Equal(t, "Moscow", d[0], "List returns a copy")
}

// ---- pagination ------------------------------------------------------------

func TestNewPaginationParams(t *testing.T) {
	p := domain.NewPaginationParams(nil, nil)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 20}, p)

	p = domain.NewPaginationParams(intPtr(3), intPtr(500))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset())
}
