package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/service"
)

func TestVehicleService_List_SortedByName(t *testing.T) {
	f := newFleet(t)

	got, err := service.NewVehicleService(f.store).List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "GAZelle", got[0].Name)
	assert.Equal(t, "Volvo FH", got[2].Name)
}

func TestVehicleService_List_Empty(t *testing.T) {
	got, err := service.NewVehicleService(newMemStore()).List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVehicleService_GetByID(t *testing.T) {
	f := newFleet(t)
	svc := service.NewVehicleService(f.store)

	got, err := svc.GetByID(context.Background(), f.tripA.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Capacity)

	_, err = svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVehicleService_GetByTripID(t *testing.T) {
	f := newFleet(t)
	svc := service.NewVehicleService(f.store)

	got, err := svc.GetByTripID(context.Background(), f.tripC.ID)
	require.NoError(t, err)
	assert.Equal(t, "GAZelle", got.Name)

	_, err = svc.GetByTripID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
